package repo

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

// WishlistRepository persists wishlist_items with set semantics per user.
type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error)
	// Add is idempotent: adding a product already present returns the stored entry.
	Add(ctx context.Context, userID string, entry models.WishlistEntry) (models.WishlistEntry, error)
	Remove(ctx context.Context, userID string, productID int) error
}
