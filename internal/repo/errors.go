package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrProductNotFound is returned when a product is not found in the repository.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantityChange is returned when an adjustment would drive inventory below zero.
	ErrInvalidQuantityChange = errors.New("invalid quantity change")
	// ErrDuplicatedValueUnique is returned when a unique column already holds the value.
	ErrDuplicatedValueUnique = errors.New("duplicated value for unique field")
	ErrUserNotFound          = errors.New("user not found")
	ErrCartEntryNotFound     = errors.New("cart entry not found")
	ErrWishlistEntryNotFound = errors.New("wishlist entry not found")
)

const (
	queryTimeout = 3 * time.Second
	defaultLimit = 100

	uniqueViolation = "23505"
)

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// page slices items by offset/limit the way the postgres repositories do.
func page[T any](items []T, offset, limit *int) []T {
	if offset != nil && *offset > len(items) {
		return []T{}
	}

	start := 0
	if offset != nil {
		start = clamp(*offset, 0, len(items))
	}

	end := len(items)
	if limit != nil && *limit > 0 {
		end = clamp(start+*limit, start, len(items))
	}

	return items[start:end]
}
