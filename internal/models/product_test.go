package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductApplyDefaults(t *testing.T) {
	p := Product{Name: "Lamp"}
	p.ApplyDefaults()

	assert.Zero(t, p.Rating)
	assert.Equal(t, DefaultCategory, p.Category)

	rated := Product{Name: "Desk", Rating: 3.5, Category: "furniture"}
	rated.ApplyDefaults()
	assert.Equal(t, 3.5, rated.Rating)
	assert.Equal(t, "furniture", rated.Category)
}

func TestCartUpsertKeepsProductsUnique(t *testing.T) {
	c := NewCart("u1")
	c.Upsert(CartEntry{ID: "a", ProductID: 1, Quantity: 1, Product: ProductSnapshot{Price: decimal.RequireFromString("2.50")}})
	c.Upsert(CartEntry{ID: "b", ProductID: 2, Quantity: 2, Product: ProductSnapshot{Price: decimal.RequireFromString("1.25")}})
	c.Upsert(CartEntry{ID: "a", ProductID: 1, Quantity: 3, Product: ProductSnapshot{Price: decimal.RequireFromString("2.50")}})

	assert.Len(t, c.Entries, 2)
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("10.00")))

	e, ok := c.ByProduct(1)
	assert.True(t, ok)
	assert.Equal(t, 3, e.Quantity)
}

func TestCartRemove(t *testing.T) {
	c := NewCart("u1")
	c.Upsert(CartEntry{ID: "a", ProductID: 1, Quantity: 1})

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Empty(t, c.Entries)
}

func TestCartCloneIsIndependent(t *testing.T) {
	c := NewCart("u1")
	c.Upsert(CartEntry{ID: "a", ProductID: 1, Quantity: 1})

	clone := c.Clone()
	clone.Entries[0].Quantity = 9

	assert.Equal(t, 1, c.Entries[0].Quantity)
}
