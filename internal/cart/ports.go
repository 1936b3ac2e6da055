package cart

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
)

// Ledger is the authoritative inventory record.
type Ledger interface {
	Get(ctx context.Context, productID int) (models.Product, error)
	Decrement(ctx context.Context, productID, qty int, reason string) (models.Product, error)
}

// Store is the remote cart_items table.
type Store interface {
	GetByUser(ctx context.Context, userID string) ([]models.CartEntry, error)
	Upsert(ctx context.Context, entry models.CartEntry) (models.CartEntry, error)
	UpdateQuantity(ctx context.Context, userID, entryID string, quantity int) (models.CartEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Clear(ctx context.Context, userID string) error
}

// WishlistStore is the remote wishlist_items table.
type WishlistStore interface {
	GetByUser(ctx context.Context, userID string) ([]models.WishlistEntry, error)
	Add(ctx context.Context, userID string, entry models.WishlistEntry) (models.WishlistEntry, error)
	Remove(ctx context.Context, userID string, productID int) error
}

type OrderStore interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
}

// ChangeFeed registers a change observer and returns its unsubscribe handle.
type ChangeFeed interface {
	Subscribe(f realtime.Filter, handler func(realtime.Change)) func()
}
