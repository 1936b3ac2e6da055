package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRating is used when the store has no rating recorded for a product.
	DefaultRating = 4.0
	// DefaultCategory is used when the store has no category recorded for a product.
	DefaultCategory = "uncategorized"
)

// Product represents a product entity in the storefront catalog.
// InventoryCount is owned by the inventory ledger and is never negative.
type Product struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Rating         float64         `json:"rating"`
	InventoryCount int             `json:"inventory_count"`
	Threshold      int             `json:"threshold"`
	CreatedAt      time.Time       `json:"created_at,omitzero"`
	UpdatedAt      time.Time       `json:"updated_at,omitzero"`
}

// LowStock reports whether the remaining inventory is below the restock threshold.
func (p Product) LowStock() bool {
	return p.InventoryCount < p.Threshold
}

// Snapshot returns the display fields denormalized into cart and wishlist rows.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Category: p.Category,
	}
}

// ApplyDefaults fills fields the store may leave empty. A zero rating is a
// real rating; a missing one is mapped where it is read.
func (p *Product) ApplyDefaults() {
	if p.Category == "" {
		p.Category = DefaultCategory
	}
}

// ProductSnapshot is the copy of product display fields taken when an item is added.
type ProductSnapshot struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	Category string          `json:"category,omitempty"`
}
