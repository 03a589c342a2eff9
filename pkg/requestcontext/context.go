// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without running the full middleware chain.
package requestcontext

import (
	"context"

	"claimd/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	identityKey  struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyIdentity  = identityKey{}
	ContextKeyRequestID = requestIDKey{}
)

// Identity retrieves the authenticated caller identity from the context.
// Returns the zero Identity if not set.
func Identity(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(ContextKeyIdentity).(domain.Identity); ok {
		return id
	}
	return ""
}

// WithIdentity injects an authenticated caller identity into the context.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
