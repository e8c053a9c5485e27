package repository

import (
	"context"
	"errors"
	"fmt"

	"rumorplaza/internal/models"

	"gorm.io/gorm"
)

func (s *remoteStore) ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		s.comments.LogError(ctx, err, "list_comments")
		return nil, fmt.Errorf("list comments for %s: %w", postID, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	s.comments.LogRead(ctx, map[string]interface{}{"post_id": postID, "count": len(comments)})
	return comments, nil
}

func (s *remoteStore) AddComment(ctx context.Context, draft models.CommentDraft) (*models.Comment, error) {
	comment := newCommentFromDraft(draft, s.opts.now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPost(tx, draft.PostID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", draft.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.comments.LogError(ctx, err, "add_comment")
		return nil, fmt.Errorf("add comment to %s: %w", draft.PostID, err)
	}
	s.comments.LogCreate(ctx, map[string]interface{}{"post_id": draft.PostID, "comment_id": comment.ID})
	return comment, nil
}
