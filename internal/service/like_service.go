package service

import (
	"context"

	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"
	"rumorplaza/internal/repository"
)

type LikeService struct {
	store repository.Store
}

func NewLikeService(store repository.Store) *LikeService {
	return &LikeService{store: store}
}

// ToggleLike flips the client's like on the post.
func (s *LikeService) ToggleLike(ctx context.Context, postID, clientID string) (models.LikeState, error) {
	if clientID == "" {
		return models.LikeState{}, models.NewValidationError("Client id is required")
	}
	state, err := s.store.ToggleLike(ctx, postID, clientID)
	if err != nil {
		observability.LogServiceError(ctx, "LikeService", "ToggleLike", err)
		return models.LikeState{}, mapStoreError(err, postID)
	}
	return state, nil
}

// IsLiked reports false when the client is unknown or the store cannot be read.
func (s *LikeService) IsLiked(ctx context.Context, postID, clientID string) bool {
	if clientID == "" {
		return false
	}
	liked, err := s.store.IsLiked(ctx, postID, clientID)
	if err != nil {
		observability.LogDegraded(ctx, "LikeService", "IsLiked", err, map[string]interface{}{"post_id": postID})
		return false
	}
	return liked
}
