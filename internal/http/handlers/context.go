package handlers

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type contextKey string

const identityKey = contextKey("identity")

// WithIdentity stores the caller's identity in ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller's identity, or the anonymous identity.
func IdentityFrom(ctx context.Context) models.Identity {
	if id, ok := ctx.Value(identityKey).(models.Identity); ok {
		return id
	}
	return models.Identity{}
}
