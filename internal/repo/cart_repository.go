package repo

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

// CartRepository persists cart_items rows. A user holds at most one row per product.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) ([]models.CartEntry, error)
	// Upsert writes the entry's quantity for (user, product). An existing row keeps
	// its id and add-time snapshot.
	Upsert(ctx context.Context, entry models.CartEntry) (models.CartEntry, error)
	UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) (models.CartEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Clear(ctx context.Context, userID string) error
}
