// Package repository provides the post, comment and like store and its
// remote and local implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"rumorplaza/internal/models"
)

var (
	// ErrNotFound is returned when the referenced post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrPasswordMismatch is returned by UpdatePost when the password does not match.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrInvalidPost is returned when a draft or patch breaks a post invariant.
	ErrInvalidPost = errors.New("invalid post")
)

const (
	// DefaultPopularLimit is used when ListPopularPosts receives a non-positive limit.
	DefaultPopularLimit = 5
	// DefaultRecentLimit is used when ListRecentPosts receives a non-positive limit.
	DefaultRecentLimit = 10
)

// Store is the data-access contract shared by the remote and local backends.
type Store interface {
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*models.Post, error)
	// GetPost returns ErrNotFound when id does not exist.
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPostsByCategory returns posts in category, newest first. "all" disables the filter.
	ListPostsByCategory(ctx context.Context, category models.Category) ([]*models.Post, error)
	ListPopularPosts(ctx context.Context, limit int) ([]*models.Post, error)
	ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error)
	// SearchPosts matches query case-insensitively against title, content and
	// nickname. A blank query matches nothing.
	SearchPosts(ctx context.Context, query string) ([]*models.Post, error)
	CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error)
	// UpdatePost applies patch when password matches and returns the updated post.
	UpdatePost(ctx context.Context, id, password string, patch models.PostPatch) (*models.Post, error)
	// DeletePost removes the post with its comments and likes. It reports false
	// when the post is missing or the password does not match.
	DeletePost(ctx context.Context, id, password string) (bool, error)
	VerifyPassword(ctx context.Context, id, password string) (bool, error)
	// IncrementViews is a no-op for a missing post.
	IncrementViews(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, clientID string) (models.LikeState, error)
	IsLiked(ctx context.Context, postID, clientID string) (bool, error)
	// ListCommentsByPost returns the post's comments, newest first.
	ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	// AddComment stores the comment and increments the post's comment count.
	AddComment(ctx context.Context, draft models.CommentDraft) (*models.Comment, error)
	Ping(ctx context.Context) error
	Name() string
}

// RankingPolicy selects the popularity score used by ListPopularPosts.
type RankingPolicy string

const (
	// RankByLikes ranks by like count.
	RankByLikes RankingPolicy = "likes"
	// RankByLikesAndViews ranks by likes plus views.
	RankByLikesAndViews RankingPolicy = "likes_views"
)

// ParseRankingPolicy maps a configuration value to a policy. Blank means RankByLikes.
func ParseRankingPolicy(raw string) (RankingPolicy, error) {
	switch p := RankingPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return RankByLikes, nil
	case RankByLikes, RankByLikesAndViews:
		return p, nil
	default:
		return "", fmt.Errorf("unknown popularity ranking %q", raw)
	}
}

func (p RankingPolicy) score(post *models.Post) int {
	if p == RankByLikesAndViews {
		return post.Likes + post.Views
	}
	return post.Likes
}

func (p RankingPolicy) orderSQL() string {
	if p == RankByLikesAndViews {
		return "likes + views DESC, created_at DESC"
	}
	return "likes DESC, created_at DESC"
}

// rank sorts posts by p, breaking ties by recency, and keeps the first limit.
func (p RankingPolicy) rank(posts []*models.Post, limit int) []*models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		si, sj := p.score(posts[i]), p.score(posts[j])
		if si != sj {
			return si > sj
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return capPosts(posts, limit)
}

type options struct {
	ranking RankingPolicy
	now     func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithRanking sets the popularity ranking policy.
func WithRanking(p RankingPolicy) Option {
	return func(o *options) {
		if p != "" {
			o.ranking = p
		}
	}
}

// WithClock overrides the time source used for creation timestamps and local ids.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ranking: RankByLikes, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newPostFromDraft checks draft against the post invariants and returns the
// post to persist, with counters zeroed and the password hashed.
func newPostFromDraft(draft models.PostDraft, now time.Time) (*models.Post, error) {
	if !draft.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidPost, draft.Category)
	}
	if len(draft.Images) > models.MaxImagesPerPost {
		return nil, fmt.Errorf("%w: at most %d images", ErrInvalidPost, models.MaxImagesPerPost)
	}
	if len(draft.Password) > models.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password longer than %d bytes", ErrInvalidPost, models.MaxPasswordBytes)
	}
	hashed, err := models.HashPassword(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	images := make([]string, len(draft.Images))
	copy(images, draft.Images)
	return &models.Post{
		Category:  draft.Category,
		Nickname:  models.NormalizeNickname(draft.Nickname),
		Password:  hashed,
		Title:     draft.Title,
		Content:   draft.Content,
		Images:    images,
		CreatedAt: now.UTC(),
	}, nil
}

func checkPatch(patch models.PostPatch) error {
	if patch.Category != nil && !patch.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidPost, *patch.Category)
	}
	if patch.Images != nil && len(*patch.Images) > models.MaxImagesPerPost {
		return fmt.Errorf("%w: at most %d images", ErrInvalidPost, models.MaxImagesPerPost)
	}
	return nil
}

func newCommentFromDraft(draft models.CommentDraft, now time.Time) *models.Comment {
	return &models.Comment{
		PostID:    draft.PostID,
		Nickname:  models.NormalizeNickname(draft.Nickname),
		Content:   draft.Content,
		CreatedAt: now.UTC(),
	}
}

// escapeLike escapes the LIKE wildcards so query text is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func popularLimit(limit int) int {
	if limit <= 0 {
		return DefaultPopularLimit
	}
	return limit
}

func recentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

func capPosts(posts []*models.Post, limit int) []*models.Post {
	if limit >= 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}

func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
