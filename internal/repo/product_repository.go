package repo

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

// ProductRepository defines the interface for product data operations.
// It is the storage side of the inventory ledger: AdjustQuantity is the only
// way inventory_count changes, and it never lets the count go below zero.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (models.Product, error)
	GetByName(ctx context.Context, name string) (models.Product, error)
	Update(ctx context.Context, product models.Product) (models.Product, error)
	Delete(ctx context.Context, id int) error
	Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error)
	AdjustQuantity(ctx context.Context, productID int, delta int) (models.Product, error)
}
