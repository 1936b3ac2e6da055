// Package sse streams cart notices and cart snapshots to signed-in users.
package sse

import (
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/cart"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type EventType string

const (
	EventNotice      EventType = "notice"
	EventCartChanged EventType = "cart.changed"
	EventHeartbeat   EventType = "heartbeat"
)

// Event is one server-sent event. An empty UserID reaches every client.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

func NewNoticeEvent(userID string, n cart.Notice) Event {
	return Event{Type: EventNotice, UserID: userID, Timestamp: time.Now().UTC(), Data: n}
}

// CartSummary is the cart payload pushed after every change.
type CartSummary struct {
	Cart      models.Cart `json:"cart"`
	ItemCount int         `json:"item_count"`
	Subtotal  string      `json:"subtotal"`
}

func NewCartChangedEvent(userID string, c models.Cart) Event {
	return Event{
		Type:      EventCartChanged,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      CartSummary{Cart: c, ItemCount: c.ItemCount(), Subtotal: c.Subtotal().StringFixed(2)},
	}
}

func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now().UTC()}
}
