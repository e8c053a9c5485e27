package service

import (
	"context"
	"strings"
	"testing"

	"rumorplaza/internal/models"
	"rumorplaza/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(newLocalStore(t), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.PostDraft)
	}{
		{"unknown category", func(d *models.PostDraft) { d.Category = "politics" }},
		{"short password", func(d *models.PostDraft) { d.Password = " 123 " }},
		{"long password", func(d *models.PostDraft) { d.Password = strings.Repeat("p", models.MaxPasswordBytes+1) }},
		{"long multibyte password", func(d *models.PostDraft) { d.Password = strings.Repeat("비", 25) }},
		{"short title", func(d *models.PostDraft) { d.Title = " a " }},
		{"long title", func(d *models.PostDraft) { d.Title = strings.Repeat("t", MaxTitleLength+1) }},
		{"short content", func(d *models.PostDraft) { d.Content = "too short" }},
		{"long nickname", func(d *models.PostDraft) { d.Nickname = strings.Repeat("n", MaxNicknameLength+1) }},
		{"too many images", func(d *models.PostDraft) { d.Images = []string{"a", "b", "c", "d", "e", "f"} }},
		{"blank image url", func(d *models.PostDraft) { d.Images = []string{" "} }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			draft := validDraft()
			tt.mutate(&draft)
			_, err := svc.CreatePost(ctx, draft)
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost_LongestPassword(t *testing.T) {
	svc := NewPostService(newLocalStore(t), nil)
	ctx := context.Background()

	draft := validDraft()
	draft.Password = strings.Repeat("p", models.MaxPasswordBytes)
	post, err := svc.CreatePost(ctx, draft)
	require.NoError(t, err)
	assert.True(t, svc.VerifyPassword(ctx, post.ID, draft.Password))
}

func TestPostService_CreatePost_TrimsInput(t *testing.T) {
	svc := NewPostService(newLocalStore(t), nil)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, validDraft())
	require.NoError(t, err)
	assert.Equal(t, "tipster", post.Nickname)
	assert.Equal(t, "New cafe opening", post.Title)
	assert.Equal(t, 0, post.Views)
	assert.Equal(t, 0, post.Likes)
	assert.True(t, svc.VerifyPassword(ctx, post.ID, "1234"))

	draft := validDraft()
	draft.Nickname = "   "
	anon, err := svc.CreatePost(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNickname, anon.Nickname)
}

func TestPostService_ReadsDegradeToDefaults(t *testing.T) {
	svc := NewPostService(failingStore{err: errBackend}, nil)
	ctx := context.Background()

	assert.Empty(t, svc.ListPosts(ctx))
	assert.NotNil(t, svc.ListPosts(ctx))
	assert.Empty(t, svc.ListPostsByCategory(ctx, models.CategoryGossip))
	assert.Empty(t, svc.ListPopularPosts(ctx, 5))
	assert.Empty(t, svc.ListRecentPosts(ctx, 10))
	assert.Empty(t, svc.SearchPosts(ctx, "actor"))
	assert.Nil(t, svc.GetPost(ctx, "1"))
	assert.False(t, svc.VerifyPassword(ctx, "1", "1234"))
	assert.ErrorIs(t, svc.Ready(ctx), errBackend)

	_, err := svc.ViewPost(ctx, "1", "client")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_CreatePost_StoreFailureIsInternal(t *testing.T) {
	svc := NewPostService(failingStore{err: errBackend}, nil)

	_, err := svc.CreatePost(context.Background(), validDraft())
	assertAppErrorCode(t, err, models.CodeInternal)
	assert.ErrorIs(t, err, errBackend)
}

func TestPostService_SearchPosts_BlankQuery(t *testing.T) {
	svc := NewPostService(newLocalStore(t), nil)
	assert.Empty(t, svc.SearchPosts(context.Background(), "   "))
	assert.NotEmpty(t, svc.SearchPosts(context.Background(), "ACTOR"))
}

func TestPostService_ViewPost(t *testing.T) {
	store := newLocalStore(t)
	svc := NewPostService(store, nil)
	likes := NewLikeService(store)
	ctx := context.Background()

	before := svc.GetPost(ctx, "1")
	require.NotNil(t, before)

	_, err := likes.ToggleLike(ctx, "1", "client-a")
	require.NoError(t, err)

	detail, err := svc.ViewPost(ctx, "1", "client-a")
	require.NoError(t, err)
	assert.Equal(t, before.Views+1, detail.Views)
	assert.True(t, detail.Liked)

	other, err := svc.ViewPost(ctx, "1", "client-b")
	require.NoError(t, err)
	assert.False(t, other.Liked)
	assert.Equal(t, before.Views+2, other.Views)

	_, err = svc.ViewPost(ctx, "missing", "client-a")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_UpdatePost(t *testing.T) {
	svc := NewPostService(newLocalStore(t), nil)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, validDraft())
	require.NoError(t, err)

	title := "  Cafe opening confirmed "
	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, post.ID, "9999", models.PostPatch{Title: &title})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, "missing", "1234", models.PostPatch{Title: &title})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, post.ID, "1234", models.PostPatch{})
		assertValidationError(t, err)
	})

	t.Run("invalid field", func(t *testing.T) {
		short := "short"
		_, err := svc.UpdatePost(ctx, post.ID, "1234", models.PostPatch{Content: &short})
		assertValidationError(t, err)
	})

	t.Run("blank password", func(t *testing.T) {
		_, err := svc.UpdatePost(ctx, post.ID, "  ", models.PostPatch{Title: &title})
		assertValidationError(t, err)
	})

	t.Run("success", func(t *testing.T) {
		updated, err := svc.UpdatePost(ctx, post.ID, "1234", models.PostPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Cafe opening confirmed", updated.Title)
		assert.Equal(t, post.Content, updated.Content)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	images := &imageRemoverStub{}
	svc := NewPostService(newLocalStore(t), images)
	ctx := context.Background()

	draft := validDraft()
	draft.Images = []string{"http://media/a.webp", "http://media/b.webp"}
	post, err := svc.CreatePost(ctx, draft)
	require.NoError(t, err)

	assertAppErrorCode(t, svc.DeletePost(ctx, post.ID, "0000"), models.CodeForbidden)
	assert.NotNil(t, svc.GetPost(ctx, post.ID))
	assert.Empty(t, images.deleted)

	assertAppErrorCode(t, svc.DeletePost(ctx, "missing", "1234"), models.CodeNotFound)
	assertValidationError(t, svc.DeletePost(ctx, post.ID, ""))

	require.NoError(t, svc.DeletePost(ctx, post.ID, " 1234 "))
	assert.Nil(t, svc.GetPost(ctx, post.ID))
	assert.Equal(t, draft.Images, images.deleted)
}

func TestPostService_DeletePost_KeepsImagesOfOtherPosts(t *testing.T) {
	ctx := context.Background()
	objects := testutil.NewObjectStoreStub("http://media.test/post-images")
	imageSvc := NewImageService(objects, nil)
	svc := NewPostService(newLocalStore(t), imageSvc)

	shared, ok := imageSvc.Upload(ctx, testutil.TinyPNG(t, 8, 8))
	require.True(t, ok)
	own, ok := imageSvc.Upload(ctx, testutil.TinyPNG(t, 8, 8))
	require.True(t, ok)
	sharedKey := objectKeyFromURL(shared)

	first := validDraft()
	first.Images = []string{shared}
	firstPost, err := svc.CreatePost(ctx, first)
	require.NoError(t, err)

	second := validDraft()
	second.Title = "Copied picture"
	second.Images = []string{
		"https://elsewhere.example/anything/" + sharedKey,
		shared + "?copy=1",
		own,
	}
	secondPost, err := svc.CreatePost(ctx, second)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, secondPost.ID, "1234"))

	_, exists := objects.Object(sharedKey)
	assert.True(t, exists)
	_, exists = objects.Object(objectKeyFromURL(own))
	assert.False(t, exists)

	got := svc.GetPost(ctx, firstPost.ID)
	require.NotNil(t, got)
	assert.Equal(t, []string{shared}, got.Images)
}
