// Package inventory is the authoritative record of remaining stock per product.
package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Ledger reads and conditionally changes products.inventory_count and records
// every applied change as a movement.
type Ledger struct {
	products  repo.ProductRepository
	movements repo.MovementRepository
	logger    *slog.Logger
}

func NewLedger(products repo.ProductRepository, movements repo.MovementRepository, logger *slog.Logger) *Ledger {
	return &Ledger{products: products, movements: movements, logger: logger}
}

// Get returns the product with its current inventory count.
func (l *Ledger) Get(ctx context.Context, productID int) (models.Product, error) {
	return l.products.GetByID(ctx, productID)
}

// Decrement removes qty units. The store refuses the change if it would leave
// the count negative and returns repo.ErrInvalidQuantityChange. No version is
// compared, so concurrent decrements apply in arrival order.
func (l *Ledger) Decrement(ctx context.Context, productID, qty int, reason string) (models.Product, error) {
	if qty <= 0 {
		return models.Product{}, ErrInvalidQuantity
	}
	return l.apply(ctx, productID, -qty, reason)
}

// Adjust applies a signed restock or correction.
func (l *Ledger) Adjust(ctx context.Context, productID, delta int, reason string) (models.Product, error) {
	if delta == 0 {
		return l.products.GetByID(ctx, productID)
	}
	return l.apply(ctx, productID, delta, reason)
}

func (l *Ledger) apply(ctx context.Context, productID, delta int, reason string) (models.Product, error) {
	p, err := l.products.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return models.Product{}, err
	}

	if _, err := l.movements.Log(ctx, productID, delta, reason); err != nil {
		// The count already changed; the history row is best effort.
		l.logger.Warn("failed to record movement",
			slog.Int("product_id", productID), slog.Int("delta", delta), slog.Any("error", err))
	}

	if p.LowStock() {
		l.logger.Warn("low stock",
			slog.Int("product_id", p.ID), slog.String("name", p.Name),
			slog.Int("inventory_count", p.InventoryCount), slog.Int("threshold", p.Threshold))
	}
	return p, nil
}
