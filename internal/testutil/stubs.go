// Package testutil provides shared test doubles and fixtures for rumorplaza tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"

	"rumorplaza/internal/storage"
)

// ErrStubFailure is returned by ObjectStoreStub when failing is enabled.
var ErrStubFailure = errors.New("object store unavailable")

// ObjectStoreStub is an in-memory storage.ObjectStore for tests.
type ObjectStoreStub struct {
	mu      sync.Mutex
	objects map[string]storage.Object
	failPut map[int]bool
	puts    int
	BaseURL string
	// FailAll makes every Put and Remove fail.
	FailAll bool
}

// NewObjectStoreStub creates an empty stub serving objects from baseURL.
func NewObjectStoreStub(baseURL string) *ObjectStoreStub {
	return &ObjectStoreStub{
		objects: make(map[string]storage.Object),
		failPut: make(map[int]bool),
		BaseURL: baseURL,
	}
}

// FailPutNumber makes the n-th Put call (1-based) fail.
func (s *ObjectStoreStub) FailPutNumber(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[n] = true
}

// Put stores obj in memory.
func (s *ObjectStoreStub) Put(_ context.Context, obj storage.Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.FailAll || s.failPut[s.puts] {
		return "", ErrStubFailure
	}
	s.objects[obj.Key] = obj
	return s.PublicURL(obj.Key), nil
}

// Remove deletes the object stored under key.
func (s *ObjectStoreStub) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return ErrStubFailure
	}
	delete(s.objects, key)
	return nil
}

// PublicURL returns BaseURL/key.
func (s *ObjectStoreStub) PublicURL(key string) string {
	return s.BaseURL + "/" + key
}

// Object returns the stored object for key.
func (s *ObjectStoreStub) Object(key string) (storage.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Keys returns the stored keys in sorted order.
func (s *ObjectStoreStub) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fataler interface {
	Helper()
	Fatalf(string, ...any)
}

// TinyPNG returns an encoded blank PNG of the given size.
func TinyPNG(t fataler, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// GradientPNG returns an encoded opaque PNG with a diagonal gradient, which
// compresses much worse than a blank image.
func GradientPNG(t fataler, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
