package service

import (
	"context"
	"errors"
	"testing"

	"rumorplaza/internal/kv"
	"rumorplaza/internal/models"
	"rumorplaza/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// failingStore fails every operation it does not override.
type failingStore struct {
	repository.Store
	err error
}

func (s failingStore) ListPosts(context.Context) ([]*models.Post, error) { return nil, s.err }
func (s failingStore) GetPost(context.Context, string) (*models.Post, error) {
	return nil, s.err
}
func (s failingStore) ListPostsByCategory(context.Context, models.Category) ([]*models.Post, error) {
	return nil, s.err
}
func (s failingStore) ListPopularPosts(context.Context, int) ([]*models.Post, error) {
	return nil, s.err
}
func (s failingStore) ListRecentPosts(context.Context, int) ([]*models.Post, error) {
	return nil, s.err
}
func (s failingStore) SearchPosts(context.Context, string) ([]*models.Post, error) {
	return nil, s.err
}
func (s failingStore) CreatePost(context.Context, models.PostDraft) (*models.Post, error) {
	return nil, s.err
}
func (s failingStore) VerifyPassword(context.Context, string, string) (bool, error) {
	return false, s.err
}
func (s failingStore) IncrementViews(context.Context, string) error { return s.err }
func (s failingStore) IsLiked(context.Context, string, string) (bool, error) {
	return false, s.err
}
func (s failingStore) ToggleLike(context.Context, string, string) (models.LikeState, error) {
	return models.LikeState{}, s.err
}
func (s failingStore) ListCommentsByPost(context.Context, string) ([]*models.Comment, error) {
	return nil, s.err
}
func (s failingStore) AddComment(context.Context, models.CommentDraft) (*models.Comment, error) {
	return nil, s.err
}
func (s failingStore) Ping(context.Context) error { return s.err }
func (s failingStore) Name() string               { return "failing" }

func newLocalStore(t *testing.T) repository.Store {
	t.Helper()
	return repository.NewLocalStore(kv.NewMemory())
}

func validDraft() models.PostDraft {
	return models.PostDraft{
		Category: models.CategoryRumor,
		Nickname: "  tipster ",
		Password: " 1234 ",
		Title:    "  New cafe opening  ",
		Content:  "Apparently a new cafe opens next week downtown.",
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

type imageRemoverStub struct {
	deleted []string
}

func (s *imageRemoverStub) Delete(_ context.Context, url string) bool {
	s.deleted = append(s.deleted, url)
	return true
}
