package auth

import (
	"context"
	"errors"
)

var (
	// ErrMissingKey means the request carried no API key.
	ErrMissingKey = errors.New("missing API key")

	// ErrInvalidKey means the key is not configured.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyDisabled means the key is configured but disabled.
	ErrKeyDisabled = errors.New("API key disabled")
)

// KeyInfo describes one accepted key.
type KeyInfo struct {
	Name    string
	Key     string
	Enabled bool
}

// Identity is the authenticated caller.
type Identity struct {
	// Name is the configured name of the key used.
	Name string
}

type contextKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
