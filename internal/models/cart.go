package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartEntry is one line item of a user's cart. Quantity is always at least 1.
type CartEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LineTotal is the snapshot price times quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is the ordered set of entries for one user, unique by product.
type Cart struct {
	UserID  string      `json:"user_id"`
	Entries []CartEntry `json:"entries"`
}

// NewCart returns an empty cart for the user.
func NewCart(userID string) Cart {
	return Cart{UserID: userID, Entries: []CartEntry{}}
}

// ByProduct returns the entry holding productID.
func (c Cart) ByProduct(productID int) (CartEntry, bool) {
	for _, e := range c.Entries {
		if e.ProductID == productID {
			return e, true
		}
	}
	return CartEntry{}, false
}

// ByID returns the entry with the given entry id.
func (c Cart) ByID(entryID string) (CartEntry, bool) {
	for _, e := range c.Entries {
		if e.ID == entryID {
			return e, true
		}
	}
	return CartEntry{}, false
}

// Upsert replaces the entry for the same product or appends a new one.
func (c *Cart) Upsert(entry CartEntry) {
	for i, e := range c.Entries {
		if e.ProductID == entry.ProductID {
			c.Entries[i] = entry
			return
		}
	}
	c.Entries = append(c.Entries, entry)
}

// Remove drops the entry with entryID and reports whether it was present.
func (c *Cart) Remove(entryID string) bool {
	for i, e := range c.Entries {
		if e.ID == entryID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// ItemCount is the sum of quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, e := range c.Entries {
		n += e.Quantity
	}
	return n
}

// Subtotal is the sum of line totals.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// Clone returns a deep copy safe to hand out of a lock.
func (c Cart) Clone() Cart {
	out := Cart{UserID: c.UserID, Entries: make([]CartEntry, len(c.Entries))}
	copy(out.Entries, c.Entries)
	return out
}
