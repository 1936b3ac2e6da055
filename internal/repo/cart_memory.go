package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type InMemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string][]models.CartEntry
}

func NewInMemoryCartRepository() *InMemoryCartRepository {
	return &InMemoryCartRepository{carts: map[string][]models.CartEntry{}}
}

func (r *InMemoryCartRepository) GetByUser(_ context.Context, userID string) ([]models.CartEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CartEntry, len(r.carts[userID]))
	copy(out, r.carts[userID])
	return out, nil
}

func (r *InMemoryCartRepository) Upsert(_ context.Context, entry models.CartEntry) (models.CartEntry, error) {
	if entry.Quantity < 1 {
		return models.CartEntry{}, ErrInvalidQuantityChange
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	entries := r.carts[entry.UserID]
	for i, e := range entries {
		if e.ProductID == entry.ProductID {
			e.Quantity = entry.Quantity
			e.UpdatedAt = now
			entries[i] = e
			return e, nil
		}
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.AddedAt, entry.UpdatedAt = now, now
	r.carts[entry.UserID] = append(entries, entry)
	return entry, nil
}

func (r *InMemoryCartRepository) UpdateQuantity(_ context.Context, userID, entryID string, quantity int) (models.CartEntry, error) {
	if quantity < 1 {
		return models.CartEntry{}, ErrInvalidQuantityChange
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.carts[userID] {
		if e.ID == entryID {
			e.Quantity = quantity
			e.UpdatedAt = time.Now().UTC()
			r.carts[userID][i] = e
			return e, nil
		}
	}
	return models.CartEntry{}, ErrCartEntryNotFound
}

func (r *InMemoryCartRepository) Delete(_ context.Context, userID, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.carts[userID]
	for i, e := range entries {
		if e.ID == entryID {
			r.carts[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return ErrCartEntryNotFound
}

func (r *InMemoryCartRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

// all returns every user's entries; used by the in-memory metrics.
func (r *InMemoryCartRepository) all() []models.CartEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CartEntry
	for _, entries := range r.carts {
		out = append(out, entries...)
	}
	return out
}
