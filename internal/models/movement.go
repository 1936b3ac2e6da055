package models

import "time"

const (
	ReasonCartAdd    = "cart_add"
	ReasonAdjustment = "adjustment"
	ReasonImport     = "import"
)

// Movement is one change applied to a product's inventory count.
type Movement struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
