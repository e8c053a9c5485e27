package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Disk stores objects as files in a directory served by the HTTP server.
type Disk struct {
	dir     string
	baseURL string
}

// NewDisk creates dir if needed. Objects are served from baseURL/<key>.
func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the directory objects are written to.
func (s *Disk) Dir() string {
	return s.dir
}

func (s *Disk) Put(ctx context.Context, obj Object) (string, error) {
	if err := checkKey(obj.Key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, obj.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, obj.Data, 0o600); err != nil {
		return "", fmt.Errorf("write object %s: %w", obj.Key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write object %s: %w", obj.Key, err)
	}
	return s.PublicURL(obj.Key), nil
}

func (s *Disk) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *Disk) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}
