package utils

import (
	"context"

	"mediateka/pkg/permission"
)

type contextKey string

const IdentityKey contextKey = "identity"

// SetIdentityContext attaches the requester identity for downstream handlers.
func SetIdentityContext(ctx context.Context, ident permission.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// GetIdentityFromContext returns the identity stored by the auth middleware.
// Requests that never passed the middleware count as anonymous.
func GetIdentityFromContext(ctx context.Context) (permission.Identity, bool) {
	identVal := ctx.Value(IdentityKey)
	if identVal == nil {
		return permission.Anonymous(), false
	}

	ident, ok := identVal.(permission.Identity)
	if !ok {
		return permission.Anonymous(), false
	}

	return ident, true
}
