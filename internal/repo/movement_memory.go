package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type InMemoryMovementRepository struct {
	mu        sync.RWMutex
	movements []models.Movement
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{
		movements: []models.Movement{},
	}
}

// AddMovement seeds a movement with an explicit timestamp.
func (r *InMemoryMovementRepository) AddMovement(productID, delta int, reason string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.movements = append(r.movements, models.Movement{
		ID:        len(r.movements) + 1,
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: createdAt.UTC(),
	})
}

func (r *InMemoryMovementRepository) Log(_ context.Context, productID, delta int, reason string) (models.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := models.Movement{
		ID:        len(r.movements) + 1,
		ProductID: productID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	r.movements = append(r.movements, m)
	return m, nil
}

func (r *InMemoryMovementRepository) GetByProductID(_ context.Context, productID int, mf MovementFilter) ([]models.Movement, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := []models.Movement{}
	for _, m := range r.movements {
		if m.ProductID == productID && mf.matches(m.CreatedAt) {
			filtered = append(filtered, m)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID > filtered[j].ID
	})

	var limit *int
	if l := mf.pageLimit(); l > 0 {
		limit = &l
	}
	return page(filtered, mf.Offset, limit), len(filtered), nil
}

// all returns every movement; used by the in-memory metrics.
func (r *InMemoryMovementRepository) all() []models.Movement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Movement, len(r.movements))
	copy(out, r.movements)
	return out
}
