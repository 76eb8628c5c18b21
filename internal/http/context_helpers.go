package httpx

import (
	"context"

	domainauth "github.com/gutp/discux/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type identityKey struct{}

type requestIDKey struct{}

// WithIdentity returns a child context that carries the caller's identity.
func WithIdentity(ctx context.Context, id domainauth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the Identity middleware.
// A context without one is Anonymous.
func IdentityFromContext(ctx context.Context) domainauth.Identity {
	if id, ok := ctx.Value(identityKey{}).(domainauth.Identity); ok {
		return id
	}
	return domainauth.Anonymous()
}

// WithRequestID returns a child context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey{}).(string)
	return s
}
