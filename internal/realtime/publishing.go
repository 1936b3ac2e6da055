package realtime

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

// PublishingProductRepository publishes a products change after every
// successful write. It stands in for the database triggers when products
// live in memory.
type PublishingProductRepository struct {
	repo.ProductRepository
	hub *Hub
}

func NewPublishingProductRepository(inner repo.ProductRepository, hub *Hub) *PublishingProductRepository {
	return &PublishingProductRepository{ProductRepository: inner, hub: hub}
}

func (r *PublishingProductRepository) publish(op string, productID int) {
	r.hub.Publish(Change{Table: TableProducts, Op: op, ProductID: productID})
}

func (r *PublishingProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	created, err := r.ProductRepository.Create(ctx, p)
	if err == nil {
		r.publish(OpInsert, created.ID)
	}
	return created, err
}

func (r *PublishingProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	updated, err := r.ProductRepository.Update(ctx, p)
	if err == nil {
		r.publish(OpUpdate, updated.ID)
	}
	return updated, err
}

func (r *PublishingProductRepository) Delete(ctx context.Context, id int) error {
	err := r.ProductRepository.Delete(ctx, id)
	if err == nil {
		r.publish(OpDelete, id)
	}
	return err
}

func (r *PublishingProductRepository) AdjustQuantity(ctx context.Context, productID, delta int) (models.Product, error) {
	p, err := r.ProductRepository.AdjustQuantity(ctx, productID, delta)
	if err == nil {
		r.publish(OpUpdate, productID)
	}
	return p, err
}
