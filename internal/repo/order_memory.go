package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{orders: []models.Order{}}
}

func (r *InMemoryOrderRepository) Create(_ context.Context, o models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPlaced
	}
	o.CreatedAt = time.Now().UTC()
	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryOrderRepository) GetByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}
