package repo

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type MovementRepository interface {
	// Log records a change of delta units for the product.
	Log(ctx context.Context, productID, delta int, reason string) (models.Movement, error)
	// GetByProductID returns the product's movements newest first plus the unpaginated total.
	GetByProductID(ctx context.Context, productID int, mf MovementFilter) ([]models.Movement, int, error)
}
