// Package auth provides API key generation, hashing, and access control.
package auth

import (
	"context"

	"github.com/responder/responder/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ownerContextKey is the context key for storing OwnerContext.
	ownerContextKey contextKey = "owner_context"
)

// ContextWithOwner adds OwnerContext to the context.
func ContextWithOwner(ctx context.Context, owner *model.OwnerContext) context.Context {
	return context.WithValue(ctx, ownerContextKey, owner)
}

// OwnerFromContext retrieves OwnerContext from the context.
// Returns nil if not present.
func OwnerFromContext(ctx context.Context) *model.OwnerContext {
	owner, ok := ctx.Value(ownerContextKey).(*model.OwnerContext)
	if !ok {
		return nil
	}
	return owner
}

// OwnerIDFromContext is a convenience function to get the owner ID.
// Returns empty string if not authenticated.
func OwnerIDFromContext(ctx context.Context) string {
	owner := OwnerFromContext(ctx)
	if owner == nil {
		return ""
	}
	return owner.OwnerID
}
