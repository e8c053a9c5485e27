package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rumorplaza/internal/models"

	"gorm.io/gorm"
)

func (s *remoteStore) listPosts(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*models.Post, error) {
	var posts []*models.Post
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if scope != nil {
		q = scope(q)
	}
	if err := q.Find(&posts).Error; err != nil {
		s.posts.LogError(ctx, err, op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.posts.LogRead(ctx, map[string]interface{}{"op": op, "count": len(posts)})
	return normalizePosts(posts), nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func (s *remoteStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.listPosts(ctx, "list_posts", newestFirst)
}

func (s *remoteStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := findPost(s.db.WithContext(ctx), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.posts.LogError(ctx, err, "get_post")
			return nil, fmt.Errorf("get post %s: %w", id, err)
		}
		return nil, err
	}
	s.posts.LogRead(ctx, map[string]interface{}{"op": "get_post", "post_id": id})
	return post, nil
}

func (s *remoteStore) ListPostsByCategory(ctx context.Context, category models.Category) ([]*models.Post, error) {
	if category == models.CategoryAll {
		return s.ListPosts(ctx)
	}
	return s.listPosts(ctx, "list_posts_by_category", func(db *gorm.DB) *gorm.DB {
		return newestFirst(db.Where("category = ?", category))
	})
}

func (s *remoteStore) ListPopularPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listPosts(ctx, "list_popular_posts", func(db *gorm.DB) *gorm.DB {
		return db.Order(s.opts.ranking.orderSQL()).Limit(popularLimit(limit))
	})
}

func (s *remoteStore) ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listPosts(ctx, "list_recent_posts", func(db *gorm.DB) *gorm.DB {
		return newestFirst(db).Limit(recentLimit(limit))
	})
}

func (s *remoteStore) SearchPosts(ctx context.Context, query string) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return []*models.Post{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.listPosts(ctx, "search_posts", func(db *gorm.DB) *gorm.DB {
		return newestFirst(db.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(nickname) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		))
	})
}

func (s *remoteStore) CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	post, err := newPostFromDraft(draft, s.opts.now())
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		s.posts.LogError(ctx, err, "create_post")
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.posts.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "category": post.Category})
	return post, nil
}

func (s *remoteStore) UpdatePost(ctx context.Context, id, password string, patch models.PostPatch) (*models.Post, error) {
	if err := checkPatch(patch); err != nil {
		return nil, err
	}

	var updated *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := findPost(tx, id)
		if err != nil {
			return err
		}
		if !models.CheckPassword(post.Password, password) {
			return ErrPasswordMismatch
		}
		if patch.Empty() {
			updated = post
			return nil
		}
		patch.Apply(post)
		if err := tx.Model(post).
			Select("category", "nickname", "title", "content", "images").
			Updates(post).Error; err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPasswordMismatch) {
			return nil, err
		}
		s.posts.LogError(ctx, err, "update_post")
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	s.posts.LogUpdate(ctx, map[string]interface{}{"post_id": id})
	return updated, nil
}

func (s *remoteStore) DeletePost(ctx context.Context, id, password string) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := findPost(tx, id)
		if err != nil {
			return err
		}
		if !models.CheckPassword(post.Password, password) {
			return ErrPasswordMismatch
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
	switch {
	case err == nil:
		s.posts.LogDelete(ctx, map[string]interface{}{"post_id": id})
		return true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPasswordMismatch):
		return false, nil
	default:
		s.posts.LogError(ctx, err, "delete_post")
		return false, fmt.Errorf("delete post %s: %w", id, err)
	}
}

func (s *remoteStore) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	post, err := findPost(s.db.WithContext(ctx), id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.posts.LogError(ctx, err, "verify_password")
		return false, fmt.Errorf("verify password %s: %w", id, err)
	}
	return models.CheckPassword(post.Password, password), nil
}

func (s *remoteStore) IncrementViews(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		s.posts.LogError(ctx, err, "increment_views")
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	return nil
}
