package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskPutAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDisk(dir, "http://localhost:8375/media/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), Object{
		Key:         "1700000000000_abc123.webp",
		ContentType: "image/webp",
		Data:        []byte("webp-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8375/media/1700000000000_abc123.webp", url)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000_abc123.webp"))
	require.NoError(t, err)
	assert.Equal(t, "webp-bytes", string(data))

	require.NoError(t, store.Remove(context.Background(), "1700000000000_abc123.webp"))
	_, err = os.Stat(filepath.Join(dir, "1700000000000_abc123.webp"))
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, store.Remove(context.Background(), "1700000000000_abc123.webp"))
}

func TestDiskRejectsTraversalKeys(t *testing.T) {
	store, err := NewDisk(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../etc/passwd", `a\b`, "nested/key.webp"} {
		_, err := store.Put(context.Background(), Object{Key: key, Data: []byte("x")})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, store.Remove(context.Background(), key), ErrInvalidKey, key)
	}
}

func TestMinioPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  MinioConfig
		want string
	}{
		{
			name: "explicit public base",
			cfg:  MinioConfig{Endpoint: "minio:9000", Bucket: "post-images", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/post-images/a.webp",
		},
		{
			name: "derived from endpoint",
			cfg:  MinioConfig{Endpoint: "http://localhost:9000", Bucket: "post-images"},
			want: "http://localhost:9000/post-images/a.webp",
		},
		{
			name: "derived with tls",
			cfg:  MinioConfig{Endpoint: "s3.example.com", Bucket: "imgs", UseSSL: true},
			want: "https://s3.example.com/imgs/a.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMinio(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.PublicURL("a.webp"))
		})
	}
}
