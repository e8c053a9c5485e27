// Package storage provides the object stores that hold uploaded post images.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned for object keys that are empty or contain a path separator.
var ErrInvalidKey = errors.New("invalid object key")

// Object is a blob to be stored under Key.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Data         []byte
}

// ObjectStore stores public image objects.
type ObjectStore interface {
	// Put stores obj and returns its public URL.
	Put(ctx context.Context, obj Object) (string, error)
	// Remove deletes the object stored under key. Removing a missing object is not an error.
	Remove(ctx context.Context, key string) error
	// PublicURL returns the URL an object stored under key is served from.
	PublicURL(key string) string
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
