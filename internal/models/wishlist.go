package models

import "time"

// WishlistEntry is keyed by product id; a user's wishlist never holds a product twice.
type WishlistEntry struct {
	ProductID int             `json:"id"`
	Product   ProductSnapshot `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
}
