package session

import (
	"context"
	"strings"
	"time"
)

// Identity captures the shopper session details extracted from a verified session token.
type Identity struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the identity carries a usable session ID.
func (i *Identity) Valid() bool {
	return i != nil && strings.TrimSpace(i.SessionID) != ""
}

type contextKey struct{}

var identityKey contextKey

// WithIdentity attaches the session identity to the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the session identity previously attached by the middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(identityKey).(*Identity)
	if !ok || !identity.Valid() {
		return nil, false
	}
	return identity, true
}

// SessionIDFromContext returns the session ID or the empty string when absent.
func SessionIDFromContext(ctx context.Context) string {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return identity.SessionID
}
