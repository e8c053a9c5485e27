package repository

import (
	"context"
	"errors"
	"fmt"

	"rumorplaza/internal/models"

	"gorm.io/gorm"
)

func (s *remoteStore) ToggleLike(ctx context.Context, postID, clientID string) (models.LikeState, error) {
	var state models.LikeState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPost(tx, postID); err != nil {
			return err
		}

		var existing models.Like
		err := tx.Where("post_id = ? AND user_id = ?", postID, clientID).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			state.Liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{PostID: postID, UserID: clientID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
				return err
			}
			state.Liked = true
		default:
			return err
		}

		post, err := findPost(tx, postID)
		if err != nil {
			return err
		}
		state.Likes = post.Likes
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.LikeState{}, err
		}
		s.likes.LogError(ctx, err, "toggle_like")
		return models.LikeState{}, fmt.Errorf("toggle like on %s: %w", postID, err)
	}
	s.likes.LogUpdate(ctx, map[string]interface{}{"post_id": postID, "liked": state.Liked, "likes": state.Likes})
	return state, nil
}

func (s *remoteStore) IsLiked(ctx context.Context, postID, clientID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, clientID).
		Count(&count).Error
	if err != nil {
		s.likes.LogError(ctx, err, "is_liked")
		return false, fmt.Errorf("is liked %s: %w", postID, err)
	}
	return count > 0, nil
}
