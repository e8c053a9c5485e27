// Package kv defines the string key/value namespace the local store persists to.
package kv

import "context"

// Namespace is a flat string key/value space.
type Namespace interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
