// Package realtime fans remote change notifications out to in-process observers.
package realtime

import (
	"slices"
	"sync"
	"time"
)

const (
	TableProducts  = "products"
	TableCartItems = "cart_items"
	TableWishlist  = "wishlist_items"

	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Change is one row-level notification from the remote store.
type Change struct {
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	ProductID int       `json:"product_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	At        time.Time `json:"-"`
}

// Filter selects changes by table and, for per-user tables, by owner.
// Empty fields match everything.
type Filter struct {
	Tables []string
	UserID string
}

func (f Filter) Matches(c Change) bool {
	if len(f.Tables) > 0 && !slices.Contains(f.Tables, c.Table) {
		return false
	}
	if f.UserID != "" && c.UserID != "" && c.UserID != f.UserID {
		return false
	}
	return true
}

type subscription struct {
	id      uint64
	filter  Filter
	handler func(Change)
}

// Hub delivers each published change to every matching subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers handler and returns the function that removes it.
// The returned function is safe to call more than once.
func (h *Hub) Subscribe(f Filter, handler func(Change)) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, filter: f, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.subs = slices.DeleteFunc(h.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

// Publish calls matching handlers synchronously on the caller's goroutine.
// Handlers that do remote work should hand it off.
func (h *Hub) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	h.mu.RLock()
	matched := make([]func(Change), 0, len(h.subs))
	for _, s := range h.subs {
		if s.filter.Matches(c) {
			matched = append(matched, s.handler)
		}
	}
	h.mu.RUnlock()

	for _, handler := range matched {
		handler(c)
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
