// Package localcache is the durable key-value mirror of carts and wishlists
// read when the remote store cannot be reached.
package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMiss is returned when the key holds no value.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func CartKey(userID string) string {
	return "cart-" + userID
}

func WishlistKey(userID string) string {
	return "wishlist-" + userID
}

// GetJSON decodes the value at key into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	data, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return v, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, data)
}
