package repo

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, o models.Order) (models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)
}
