package repository

import (
	"context"
	"errors"

	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracedStore decorates a Store with a span and metrics per operation.
type tracedStore struct {
	inner Store
}

// NewTracedStore wraps inner so every call opens a "store.<Operation>" span
// and records latency and outcome metrics.
func NewTracedStore(inner Store) Store {
	return &tracedStore{inner: inner}
}

func (t *tracedStore) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := observability.StartStoreSpan(ctx, t.inner.Name(), op)
	span.SetAttributes(attrs...)
	track := observability.TrackStoreOperation(t.inner.Name(), op)
	return ctx, func(err error) {
		// Expected outcomes are not failures.
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPasswordMismatch) {
			span.SetAttributes(attribute.String("store.outcome", err.Error()))
			err = nil
		}
		track(err)
		observability.EndSpan(span, err)
	}
}

func postAttr(id string) attribute.KeyValue { return attribute.String("post.id", id) }

func countAttr(n int) attribute.KeyValue { return attribute.Int("result.count", n) }

func (t *tracedStore) Name() string { return t.inner.Name() }

func (t *tracedStore) Ping(ctx context.Context) error {
	ctx, end := t.start(ctx, "Ping")
	err := t.inner.Ping(ctx)
	end(err)
	return err
}

func (t *tracedStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	ctx, end := t.start(ctx, "ListPosts")
	posts, err := t.inner.ListPosts(ctx)
	annotate(ctx, countAttr(len(posts)))
	end(err)
	return posts, err
}

func (t *tracedStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	ctx, end := t.start(ctx, "GetPost", postAttr(id))
	post, err := t.inner.GetPost(ctx, id)
	end(err)
	return post, err
}

func (t *tracedStore) ListPostsByCategory(ctx context.Context, category models.Category) ([]*models.Post, error) {
	ctx, end := t.start(ctx, "ListPostsByCategory", attribute.String("post.category", string(category)))
	posts, err := t.inner.ListPostsByCategory(ctx, category)
	annotate(ctx, countAttr(len(posts)))
	end(err)
	return posts, err
}

func (t *tracedStore) ListPopularPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	ctx, end := t.start(ctx, "ListPopularPosts", attribute.Int("query.limit", limit))
	posts, err := t.inner.ListPopularPosts(ctx, limit)
	end(err)
	return posts, err
}

func (t *tracedStore) ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	ctx, end := t.start(ctx, "ListRecentPosts", attribute.Int("query.limit", limit))
	posts, err := t.inner.ListRecentPosts(ctx, limit)
	end(err)
	return posts, err
}

func (t *tracedStore) SearchPosts(ctx context.Context, query string) ([]*models.Post, error) {
	ctx, end := t.start(ctx, "SearchPosts", attribute.Int("query.length", len(query)))
	posts, err := t.inner.SearchPosts(ctx, query)
	annotate(ctx, countAttr(len(posts)))
	end(err)
	return posts, err
}

func (t *tracedStore) CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	ctx, end := t.start(ctx, "CreatePost", attribute.String("post.category", string(draft.Category)))
	post, err := t.inner.CreatePost(ctx, draft)
	if post != nil {
		annotate(ctx, postAttr(post.ID))
	}
	end(err)
	return post, err
}

func (t *tracedStore) UpdatePost(ctx context.Context, id, password string, patch models.PostPatch) (*models.Post, error) {
	ctx, end := t.start(ctx, "UpdatePost", postAttr(id))
	post, err := t.inner.UpdatePost(ctx, id, password, patch)
	end(err)
	return post, err
}

func (t *tracedStore) DeletePost(ctx context.Context, id, password string) (bool, error) {
	ctx, end := t.start(ctx, "DeletePost", postAttr(id))
	ok, err := t.inner.DeletePost(ctx, id, password)
	annotate(ctx, attribute.Bool("result.deleted", ok))
	end(err)
	return ok, err
}

func (t *tracedStore) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	ctx, end := t.start(ctx, "VerifyPassword", postAttr(id))
	ok, err := t.inner.VerifyPassword(ctx, id, password)
	end(err)
	return ok, err
}

func (t *tracedStore) IncrementViews(ctx context.Context, id string) error {
	ctx, end := t.start(ctx, "IncrementViews", postAttr(id))
	err := t.inner.IncrementViews(ctx, id)
	end(err)
	return err
}

func (t *tracedStore) ToggleLike(ctx context.Context, postID, clientID string) (models.LikeState, error) {
	ctx, end := t.start(ctx, "ToggleLike", postAttr(postID))
	state, err := t.inner.ToggleLike(ctx, postID, clientID)
	annotate(ctx, attribute.Bool("result.liked", state.Liked))
	end(err)
	return state, err
}

func (t *tracedStore) IsLiked(ctx context.Context, postID, clientID string) (bool, error) {
	ctx, end := t.start(ctx, "IsLiked", postAttr(postID))
	ok, err := t.inner.IsLiked(ctx, postID, clientID)
	end(err)
	return ok, err
}

func (t *tracedStore) ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	ctx, end := t.start(ctx, "ListCommentsByPost", postAttr(postID))
	comments, err := t.inner.ListCommentsByPost(ctx, postID)
	annotate(ctx, countAttr(len(comments)))
	end(err)
	return comments, err
}

func (t *tracedStore) AddComment(ctx context.Context, draft models.CommentDraft) (*models.Comment, error) {
	ctx, end := t.start(ctx, "AddComment", postAttr(draft.PostID))
	comment, err := t.inner.AddComment(ctx, draft)
	end(err)
	return comment, err
}

func annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
