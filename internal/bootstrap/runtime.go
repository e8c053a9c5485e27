// Package bootstrap selects and connects the store, object store and Redis
// client once at startup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rumorplaza/internal/cache"
	"rumorplaza/internal/config"
	"rumorplaza/internal/database"
	"rumorplaza/internal/kv"
	"rumorplaza/internal/repository"
	"rumorplaza/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LocalKeyPrefix namespaces the local store's keys in Redis.
const LocalKeyPrefix = "rumorplaza:"

// Runtime holds the long-lived dependencies of a process.
type Runtime struct {
	Store   repository.Store
	Objects storage.ObjectStore
	Redis   *redis.Client
	// DB is nil when the local store is selected.
	DB *gorm.DB
}

// InitRuntime connects Redis and the configured backends. The store backend
// is resolved here and never switched afterwards.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{Redis: cache.GetClient()}

	ranking, err := repository.ParseRankingPolicy(cfg.PopularRanking)
	if err != nil {
		return nil, err
	}

	switch cfg.ResolvedStoreBackend() {
	case config.StoreBackendRemote:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Store = repository.NewRemoteStore(db, repository.WithRanking(ranking))
	default:
		rt.Store = repository.NewLocalStore(localNamespace(rt.Redis), repository.WithRanking(ranking))
	}
	rt.Store = repository.NewTracedStore(rt.Store)
	log.Printf("Using %s store", rt.Store.Name())

	objects, err := NewObjectStore(ctx, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Objects = objects

	return rt, nil
}

// localNamespace keeps local-store data in Redis when it is available so it
// survives restarts, and in memory otherwise.
func localNamespace(rdb *redis.Client) kv.Namespace {
	if rdb == nil {
		log.Println("Local store running in memory; data is lost on restart")
		return kv.NewMemory()
	}
	return kv.NewRedis(rdb, LocalKeyPrefix)
}

// NewObjectStore builds the configured image object store.
func NewObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.ImageStore {
	case config.ImageStoreMinio:
		store, err := storage.NewMinio(storage.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.MinioBucket,
			PublicBaseURL: cfg.ImagePublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewDisk(cfg.ImageUploadDir, cfg.ImagePublicBaseURL)
	}
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				errs = append(errs, fmt.Errorf("close database: %w", cerr))
			}
		}
	}
	if rt.Redis != nil {
		if err := cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
