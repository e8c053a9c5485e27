package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"rumorplaza/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call so
// creation order is unambiguous.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func validDraft(title string) models.PostDraft {
	return models.PostDraft{
		Category: models.CategoryRumor,
		Nickname: "tipster",
		Password: "secret",
		Title:    title,
		Content:  "0123456789 and then some",
		Images:   []string{},
	}
}

func assertNewestFirst(t *testing.T, posts []*models.Post) {
	t.Helper()
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt),
			"post %s is newer than its predecessor %s", posts[i].ID, posts[i-1].ID)
	}
}

func containsPost(posts []*models.Post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

// runStoreContract checks the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		draft := validDraft("fresh rumor")
		draft.Nickname = "   "
		draft.Images = []string{"https://cdn.example/a.webp", "https://cdn.example/b.webp"}

		created, err := s.CreatePost(ctx, draft)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultNickname, got.Nickname)
		assert.Equal(t, draft.Category, got.Category)
		assert.Equal(t, draft.Title, got.Title)
		assert.Equal(t, draft.Content, got.Content)
		assert.Equal(t, draft.Images, got.Images)
		assert.Zero(t, got.Views)
		assert.Zero(t, got.Likes)
		assert.Zero(t, got.CommentCount)
		assert.False(t, got.CreatedAt.IsZero())
		assert.NotEqual(t, draft.Password, got.Password, "password must not be stored verbatim")

		ok, err := s.VerifyPassword(ctx, created.ID, draft.Password)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CreatePreservesNewlines", func(t *testing.T) {
		s := newStore(t)
		draft := validDraft("multi line")
		draft.Content = "line one\n\nline two"
		created, err := s.CreatePost(ctx, draft)
		require.NoError(t, err)

		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "line one\n\nline two", got.Content)
	})

	t.Run("CreateRejectsBrokenInvariants", func(t *testing.T) {
		s := newStore(t)
		bad := validDraft("bad category")
		bad.Category = "sports"
		_, err := s.CreatePost(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidPost)

		tooMany := validDraft("too many images")
		tooMany.Images = []string{"1", "2", "3", "4", "5", "6"}
		_, err = s.CreatePost(ctx, tooMany)
		assert.ErrorIs(t, err, ErrInvalidPost)

		longPassword := validDraft("long password")
		longPassword.Password = strings.Repeat("p", models.MaxPasswordBytes+1)
		_, err = s.CreatePost(ctx, longPassword)
		assert.ErrorIs(t, err, ErrInvalidPost)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetPost(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListPostsNewestFirst", func(t *testing.T) {
		s := newStore(t)
		first, err := s.CreatePost(ctx, validDraft("first"))
		require.NoError(t, err)
		second, err := s.CreatePost(ctx, validDraft("second"))
		require.NoError(t, err)

		posts, err := s.ListPosts(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(posts), 2)
		assert.Equal(t, second.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[1].ID)
		assertNewestFirst(t, posts)

		recent, err := s.ListRecentPosts(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, second.ID, recent[0].ID)
	})

	t.Run("ListPostsByCategory", func(t *testing.T) {
		s := newStore(t)
		gossip := validDraft("gossip item")
		gossip.Category = models.CategoryGossip
		g, err := s.CreatePost(ctx, gossip)
		require.NoError(t, err)
		r, err := s.CreatePost(ctx, validDraft("rumor item"))
		require.NoError(t, err)

		rumors, err := s.ListPostsByCategory(ctx, models.CategoryRumor)
		require.NoError(t, err)
		assert.True(t, containsPost(rumors, r.ID))
		assert.False(t, containsPost(rumors, g.ID))
		for _, p := range rumors {
			assert.Equal(t, models.CategoryRumor, p.Category)
		}
		assertNewestFirst(t, rumors)

		all, err := s.ListPostsByCategory(ctx, models.CategoryAll)
		require.NoError(t, err)
		everything, err := s.ListPosts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(everything))
	})

	t.Run("UpdatePost", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePost(ctx, validDraft("before"))
		require.NoError(t, err)
		require.NoError(t, s.IncrementViews(ctx, created.ID))

		title := "hacked"
		_, err = s.UpdatePost(ctx, created.ID, "wrong", models.PostPatch{Title: &title})
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		unchanged, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "before", unchanged.Title)

		title = "after"
		category := models.CategoryAmazing
		images := []string{"https://cdn.example/new.webp"}
		updated, err := s.UpdatePost(ctx, created.ID, "secret", models.PostPatch{
			Title:    &title,
			Category: &category,
			Images:   &images,
		})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Title)

		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Title)
		assert.Equal(t, models.CategoryAmazing, got.Category)
		assert.Equal(t, images, got.Images)
		assert.Equal(t, unchanged.Content, got.Content)
		assert.Equal(t, unchanged.Nickname, got.Nickname)
		assert.Equal(t, 1, got.Views)
		assert.True(t, unchanged.CreatedAt.Equal(got.CreatedAt))

		_, err = s.UpdatePost(ctx, "does-not-exist", "secret", models.PostPatch{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)

		bad := models.Category("sports")
		_, err = s.UpdatePost(ctx, created.ID, "secret", models.PostPatch{Category: &bad})
		assert.ErrorIs(t, err, ErrInvalidPost)
	})

	t.Run("DeletePostCascades", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePost(ctx, validDraft("doomed"))
		require.NoError(t, err)
		for _, body := range []string{"one", "two"} {
			_, err := s.AddComment(ctx, models.CommentDraft{PostID: created.ID, Content: body})
			require.NoError(t, err)
		}
		_, err = s.ToggleLike(ctx, created.ID, "client-a")
		require.NoError(t, err)

		ok, err := s.DeletePost(ctx, created.ID, "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
		_, err = s.GetPost(ctx, created.ID)
		require.NoError(t, err)

		ok, err = s.DeletePost(ctx, created.ID, "secret")
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetPost(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		comments, err := s.ListCommentsByPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
		liked, err := s.IsLiked(ctx, created.ID, "client-a")
		require.NoError(t, err)
		assert.False(t, liked)

		ok, err = s.DeletePost(ctx, created.ID, "secret")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("VerifyPasswordMissing", func(t *testing.T) {
		s := newStore(t)
		ok, err := s.VerifyPassword(ctx, "does-not-exist", "secret")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("IncrementViews", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePost(ctx, validDraft("watched"))
		require.NoError(t, err)

		require.NoError(t, s.IncrementViews(ctx, created.ID))
		require.NoError(t, s.IncrementViews(ctx, created.ID))
		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Views)

		assert.NoError(t, s.IncrementViews(ctx, "does-not-exist"))
	})

	t.Run("ToggleLikeIsATrueToggle", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePost(ctx, validDraft("likeable"))
		require.NoError(t, err)

		state, err := s.ToggleLike(ctx, created.ID, "client-a")
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: true, Likes: 1}, state)

		liked, err := s.IsLiked(ctx, created.ID, "client-a")
		require.NoError(t, err)
		assert.True(t, liked)
		liked, err = s.IsLiked(ctx, created.ID, "client-b")
		require.NoError(t, err)
		assert.False(t, liked)

		state, err = s.ToggleLike(ctx, created.ID, "client-b")
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: true, Likes: 2}, state)

		state, err = s.ToggleLike(ctx, created.ID, "client-a")
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: false, Likes: 1}, state)

		state, err = s.ToggleLike(ctx, created.ID, "client-b")
		require.NoError(t, err)
		assert.Equal(t, models.LikeState{Liked: false, Likes: 0}, state)

		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Likes)

		_, err = s.ToggleLike(ctx, "does-not-exist", "client-a")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SearchPosts", func(t *testing.T) {
		s := newStore(t)
		byTitle, err := s.CreatePost(ctx, validDraft("The Zebra Incident"))
		require.NoError(t, err)
		byNickname := validDraft("unrelated headline")
		byNickname.Nickname = "ZebraWatcher"
		nick, err := s.CreatePost(ctx, byNickname)
		require.NoError(t, err)
		percent := validDraft("100% confirmed")
		pct, err := s.CreatePost(ctx, percent)
		require.NoError(t, err)

		for _, blank := range []string{"", "   "} {
			posts, err := s.SearchPosts(ctx, blank)
			require.NoError(t, err)
			assert.Empty(t, posts)
		}

		posts, err := s.SearchPosts(ctx, "zEbRa")
		require.NoError(t, err)
		assert.True(t, containsPost(posts, byTitle.ID))
		assert.True(t, containsPost(posts, nick.ID))
		assert.False(t, containsPost(posts, pct.ID))
		assertNewestFirst(t, posts)

		posts, err = s.SearchPosts(ctx, "%")
		require.NoError(t, err)
		assert.True(t, containsPost(posts, pct.ID))
		for _, p := range posts {
			assert.True(t, strings.Contains(p.Title+p.Content+p.Nickname, "%"), "wildcard matched %q", p.Title)
		}
	})

	t.Run("ListPopularPosts", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			_, err := s.CreatePost(ctx, validDraft("filler"))
			require.NoError(t, err)
		}

		posts, err := s.ListPopularPosts(ctx, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(posts), 2)
		for i := 1; i < len(posts); i++ {
			assert.GreaterOrEqual(t, posts[i-1].Likes, posts[i].Likes)
		}

		posts, err = s.ListPopularPosts(ctx, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(posts), DefaultPopularLimit)
	})

	t.Run("Comments", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePost(ctx, validDraft("discussed"))
		require.NoError(t, err)

		first, err := s.AddComment(ctx, models.CommentDraft{PostID: created.ID, Nickname: "", Content: "first"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultNickname, first.Nickname)
		assert.NotEmpty(t, first.ID)
		second, err := s.AddComment(ctx, models.CommentDraft{PostID: created.ID, Nickname: "bob", Content: "second"})
		require.NoError(t, err)

		comments, err := s.ListCommentsByPost(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, second.ID, comments[0].ID)
		assert.Equal(t, first.ID, comments[1].ID)

		got, err := s.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CommentCount)

		_, err = s.AddComment(ctx, models.CommentDraft{PostID: "does-not-exist", Content: "orphan"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EndToEndScenario", func(t *testing.T) {
		s := newStore(t)
		result, err := s.CreatePost(ctx, models.PostDraft{
			Category: models.CategoryRumor,
			Nickname: "",
			Password: "1234",
			Title:    "ab",
			Content:  "0123456789",
			Images:   []string{},
		})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultNickname, result.Nickname)
		assert.Zero(t, result.CommentCount)

		_, err = s.AddComment(ctx, models.CommentDraft{PostID: result.ID, Nickname: "", Content: "hi"})
		require.NoError(t, err)

		comments, err := s.ListCommentsByPost(ctx, result.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
		got, err := s.GetPost(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CommentCount)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
		assert.NotEmpty(t, s.Name())
	})
}
