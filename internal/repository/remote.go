package repository

import (
	"context"
	"errors"
	"fmt"

	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"

	"gorm.io/gorm"
)

const remoteName = "remote"

// remoteStore implements Store over a relational database through gorm.
type remoteStore struct {
	db       *gorm.DB
	opts     options
	posts    *observability.RepoLogger
	comments *observability.RepoLogger
	likes    *observability.RepoLogger
}

// NewRemoteStore creates a Store backed by the posts, comments and likes tables.
func NewRemoteStore(db *gorm.DB, opts ...Option) Store {
	return &remoteStore{
		db:       db,
		opts:     buildOptions(opts),
		posts:    observability.NewRepoLogger(remoteName, "posts"),
		comments: observability.NewRepoLogger(remoteName, "comments"),
		likes:    observability.NewRepoLogger(remoteName, "likes"),
	}
}

func (s *remoteStore) Name() string { return remoteName }

func (s *remoteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("access sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// findPost loads a post inside db, mapping a missing row to ErrNotFound.
func findPost(db *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	err := db.Where("id = ?", id).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizePost(&post)
	return &post, nil
}

func normalizePost(p *models.Post) {
	if p.Images == nil {
		p.Images = []string{}
	}
}

func normalizePosts(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	for _, p := range posts {
		normalizePost(p)
	}
	return posts
}
