package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"
	"rumorplaza/internal/repository"
)

const (
	MinPasswordLength = 4
	MinTitleLength    = 2
	MaxTitleLength    = 100
	MinContentLength  = 10
	MaxContentLength  = 10000
	MaxNicknameLength = 20
)

// ImageRemover deletes uploaded images by their public URL.
type ImageRemover interface {
	Delete(ctx context.Context, publicURL string) bool
}

// PostDetail is a post as shown on its own page.
type PostDetail struct {
	*models.Post
	Liked bool `json:"liked"`
}

// PostService validates author input and applies the safe-default read
// policy on top of a Store.
type PostService struct {
	store  repository.Store
	images ImageRemover
}

func NewPostService(store repository.Store, images ImageRemover) *PostService {
	return &PostService{store: store, images: images}
}

// Ready reports whether the backing store is reachable.
func (s *PostService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// StoreName returns the name of the backing store.
func (s *PostService) StoreName() string {
	return s.store.Name()
}

func (s *PostService) ListPosts(ctx context.Context) []*models.Post {
	posts, err := s.store.ListPosts(ctx)
	return s.postsOrEmpty(ctx, "ListPosts", posts, err, nil)
}

func (s *PostService) ListPostsByCategory(ctx context.Context, category models.Category) []*models.Post {
	posts, err := s.store.ListPostsByCategory(ctx, category)
	return s.postsOrEmpty(ctx, "ListPostsByCategory", posts, err, map[string]interface{}{"category": category})
}

func (s *PostService) ListPopularPosts(ctx context.Context, limit int) []*models.Post {
	posts, err := s.store.ListPopularPosts(ctx, limit)
	return s.postsOrEmpty(ctx, "ListPopularPosts", posts, err, map[string]interface{}{"limit": limit})
}

func (s *PostService) ListRecentPosts(ctx context.Context, limit int) []*models.Post {
	posts, err := s.store.ListRecentPosts(ctx, limit)
	return s.postsOrEmpty(ctx, "ListRecentPosts", posts, err, map[string]interface{}{"limit": limit})
}

func (s *PostService) SearchPosts(ctx context.Context, query string) []*models.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Post{}
	}
	posts, err := s.store.SearchPosts(ctx, query)
	return s.postsOrEmpty(ctx, "SearchPosts", posts, err, map[string]interface{}{"query": query})
}

// GetPost returns nil when the post is absent or cannot be read.
func (s *PostService) GetPost(ctx context.Context, id string) *models.Post {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			observability.LogDegraded(ctx, "PostService", "GetPost", err, map[string]interface{}{"post_id": id})
		}
		return nil
	}
	return post
}

// ViewPost counts a view and returns the post with the client's like state.
func (s *PostService) ViewPost(ctx context.Context, id, clientID string) (*PostDetail, error) {
	if err := s.store.IncrementViews(ctx, id); err != nil {
		observability.LogDegraded(ctx, "PostService", "IncrementViews", err, map[string]interface{}{"post_id": id})
	}
	post := s.GetPost(ctx, id)
	if post == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	detail := &PostDetail{Post: post}
	if clientID != "" {
		liked, err := s.store.IsLiked(ctx, id, clientID)
		if err != nil {
			observability.LogDegraded(ctx, "PostService", "IsLiked", err, map[string]interface{}{"post_id": id})
		}
		detail.Liked = liked && err == nil
	}
	return detail, nil
}

func (s *PostService) CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	draft = trimDraft(draft)
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	post, err := s.store.CreatePost(ctx, draft)
	if err != nil {
		observability.LogServiceError(ctx, "PostService", "CreatePost", err)
		return nil, mapStoreError(err, "")
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id, password string, patch models.PostPatch) (*models.Post, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, models.NewValidationError("Password is required")
	}
	patch = trimPatch(patch)
	if patch.Empty() {
		return nil, models.NewValidationError("Nothing to update")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	post, err := s.store.UpdatePost(ctx, id, password, patch)
	if err != nil {
		if !errors.Is(err, repository.ErrPasswordMismatch) && !errors.Is(err, repository.ErrNotFound) {
			observability.LogServiceError(ctx, "PostService", "UpdatePost", err)
		}
		return nil, mapStoreError(err, id)
	}
	return post, nil
}

// DeletePost removes the post with its comments and likes, then makes a
// best-effort attempt to remove the images no other post still shows.
func (s *PostService) DeletePost(ctx context.Context, id, password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return models.NewValidationError("Password is required")
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return mapStoreError(err, id)
	}
	deleted, err := s.store.DeletePost(ctx, id, password)
	if err != nil {
		observability.LogServiceError(ctx, "PostService", "DeletePost", err)
		return mapStoreError(err, id)
	}
	if !deleted {
		return models.NewForbiddenError("Password does not match")
	}
	s.releaseImages(ctx, post.Images)
	return nil
}

// releaseImages removes images of a deleted post unless a remaining post
// references the same object.
func (s *PostService) releaseImages(ctx context.Context, images []string) {
	if s.images == nil || len(images) == 0 {
		return
	}
	remaining, err := s.store.ListPosts(ctx)
	if err != nil {
		observability.LogDegraded(ctx, "PostService", "DeletePost", err, map[string]interface{}{"images": len(images)})
		return
	}
	inUse := make(map[string]struct{})
	for _, p := range remaining {
		for _, url := range p.Images {
			inUse[objectKeyFromURL(url)] = struct{}{}
		}
	}
	for _, url := range images {
		if _, ok := inUse[objectKeyFromURL(url)]; ok {
			continue
		}
		s.images.Delete(ctx, url)
	}
}

// VerifyPassword reports false for a missing post or an unreadable store.
func (s *PostService) VerifyPassword(ctx context.Context, id, password string) bool {
	ok, err := s.store.VerifyPassword(ctx, id, strings.TrimSpace(password))
	if err != nil {
		observability.LogDegraded(ctx, "PostService", "VerifyPassword", err, map[string]interface{}{"post_id": id})
		return false
	}
	return ok
}

func (s *PostService) postsOrEmpty(ctx context.Context, method string, posts []*models.Post, err error, fields map[string]interface{}) []*models.Post {
	if err != nil {
		observability.LogDegraded(ctx, "PostService", method, err, fields)
		return []*models.Post{}
	}
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}

func trimDraft(d models.PostDraft) models.PostDraft {
	d.Nickname = strings.TrimSpace(d.Nickname)
	d.Password = strings.TrimSpace(d.Password)
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	return d
}

func trimPatch(p models.PostPatch) models.PostPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	p.Nickname = trim(p.Nickname)
	p.Title = trim(p.Title)
	p.Content = trim(p.Content)
	return p
}

func validateDraft(d models.PostDraft) error {
	if !d.Category.Valid() {
		return models.NewValidationError("Invalid category")
	}
	if utf8.RuneCountInString(d.Password) < MinPasswordLength {
		return models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(d.Password) > models.MaxPasswordBytes {
		return models.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", models.MaxPasswordBytes))
	}
	if err := validateNickname(d.Nickname); err != nil {
		return err
	}
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	if err := validateContent(d.Content); err != nil {
		return err
	}
	return validateImages(d.Images)
}

func validatePatch(p models.PostPatch) error {
	if p.Category != nil && !p.Category.Valid() {
		return models.NewValidationError("Invalid category")
	}
	if p.Nickname != nil {
		if err := validateNickname(*p.Nickname); err != nil {
			return err
		}
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Content != nil {
		if err := validateContent(*p.Content); err != nil {
			return err
		}
	}
	if p.Images != nil {
		return validateImages(*p.Images)
	}
	return nil
}

func validateNickname(nickname string) error {
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return models.NewValidationError(fmt.Sprintf("Nickname too long (max %d characters)", MaxNicknameLength))
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < MinTitleLength {
		return models.NewValidationError(fmt.Sprintf("Title must be at least %d characters", MinTitleLength))
	}
	if n > MaxTitleLength {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", MaxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < MinContentLength {
		return models.NewValidationError(fmt.Sprintf("Content must be at least %d characters", MinContentLength))
	}
	if n > MaxContentLength {
		return models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", MaxContentLength))
	}
	return nil
}

func validateImages(images []string) error {
	if len(images) > models.MaxImagesPerPost {
		return models.NewValidationError(fmt.Sprintf("At most %d images per post", models.MaxImagesPerPost))
	}
	for _, url := range images {
		if strings.TrimSpace(url) == "" {
			return models.NewValidationError("Image URL must not be empty")
		}
	}
	return nil
}
