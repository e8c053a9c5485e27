// Package identity manages the opaque client token used to attribute likes.
// It is not an account and carries no authority.
package identity

import (
	"context"

	"github.com/google/uuid"
)

const maxLen = 64

type ctxKey struct{}

// NewClientID returns a fresh random client token.
func NewClientID() string {
	return uuid.NewString()
}

// Valid reports whether id is usable as a client token: non-empty, at most
// 64 bytes, and limited to letters, digits, '-' and '_'.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// WithClientID returns a context carrying id.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the client id carried by ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
