package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL is the externally reachable endpoint. Defaults to the endpoint.
	PublicBaseURL string
}

// Minio stores objects in an S3-compatible bucket.
type Minio struct {
	cfg    MinioConfig
	client *minio.Client
}

// NewMinio creates a bucket client. It does not contact the server.
func NewMinio(cfg MinioConfig) (*Minio, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if cfg.PublicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicBaseURL = scheme + "://" + endpoint
	}
	return &Minio{cfg: cfg, client: cl}, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

func (s *Minio) Put(ctx context.Context, obj Object) (string, error) {
	if err := checkKey(obj.Key); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, obj.Key,
		bytes.NewReader(obj.Data), int64(len(obj.Data)),
		minio.PutObjectOptions{ContentType: obj.ContentType, CacheControl: obj.CacheControl})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", obj.Key, err)
	}
	return s.PublicURL(obj.Key), nil
}

func (s *Minio) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *Minio) PublicURL(key string) string {
	return joinURL(s.cfg.PublicBaseURL, s.cfg.Bucket, key)
}
