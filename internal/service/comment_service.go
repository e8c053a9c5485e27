package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"
	"rumorplaza/internal/repository"
)

const MaxCommentLength = 1000

type CommentService struct {
	store repository.Store
}

func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

// ListComments returns the post's comments, newest first, or an empty list
// when the store cannot be read.
func (s *CommentService) ListComments(ctx context.Context, postID string) []*models.Comment {
	comments, err := s.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		observability.LogDegraded(ctx, "CommentService", "ListComments", err, map[string]interface{}{"post_id": postID})
		return []*models.Comment{}
	}
	if comments == nil {
		return []*models.Comment{}
	}
	return comments
}

func (s *CommentService) AddComment(ctx context.Context, draft models.CommentDraft) (*models.Comment, error) {
	draft.Nickname = strings.TrimSpace(draft.Nickname)
	draft.Content = strings.TrimSpace(draft.Content)

	if draft.PostID == "" {
		return nil, models.NewValidationError("Post is required")
	}
	if draft.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(draft.Content) > MaxCommentLength {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", MaxCommentLength))
	}
	if err := validateNickname(draft.Nickname); err != nil {
		return nil, err
	}

	comment, err := s.store.AddComment(ctx, draft)
	if err != nil {
		observability.LogServiceError(ctx, "CommentService", "AddComment", err)
		return nil, mapStoreError(err, draft.PostID)
	}
	return comment, nil
}
