package repo

import (
	"context"
	"sync"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type InMemoryWishlistRepository struct {
	mu    sync.RWMutex
	lists map[string][]models.WishlistEntry
}

func NewInMemoryWishlistRepository() *InMemoryWishlistRepository {
	return &InMemoryWishlistRepository{lists: map[string][]models.WishlistEntry{}}
}

func (r *InMemoryWishlistRepository) GetByUser(_ context.Context, userID string) ([]models.WishlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.WishlistEntry, len(r.lists[userID]))
	copy(out, r.lists[userID])
	return out, nil
}

func (r *InMemoryWishlistRepository) Add(_ context.Context, userID string, entry models.WishlistEntry) (models.WishlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.lists[userID] {
		if e.ProductID == entry.ProductID {
			return e, nil
		}
	}
	entry.AddedAt = time.Now().UTC()
	r.lists[userID] = append(r.lists[userID], entry)
	return entry, nil
}

func (r *InMemoryWishlistRepository) Remove(_ context.Context, userID string, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.lists[userID]
	for i, e := range entries {
		if e.ProductID == productID {
			r.lists[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return ErrWishlistEntryNotFound
}
