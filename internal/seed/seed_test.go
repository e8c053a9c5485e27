package seed

import (
	"context"
	"testing"
	"unicode/utf8"

	"rumorplaza/internal/kv"
	"rumorplaza/internal/models"
	"rumorplaza/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostDraft_IsValid(t *testing.T) {
	f := NewFactory(42)
	for i := 0; i < 50; i++ {
		d := f.BuildPostDraft()
		assert.True(t, d.Category.Valid(), d.Category)
		assert.GreaterOrEqual(t, utf8.RuneCountInString(d.Password), 4)
		assert.GreaterOrEqual(t, utf8.RuneCountInString(d.Title), 2)
		assert.LessOrEqual(t, utf8.RuneCountInString(d.Title), 100)
		assert.GreaterOrEqual(t, utf8.RuneCountInString(d.Content), 10)
		assert.LessOrEqual(t, utf8.RuneCountInString(d.Nickname), 20)
		assert.LessOrEqual(t, len(d.Images), models.MaxImagesPerPost)
	}
}

func TestFactory_IsReproducible(t *testing.T) {
	a := NewFactory(7).BuildPostDraft()
	b := NewFactory(7).BuildPostDraft()
	assert.Equal(t, a, b)
}

func TestSeeder_Run(t *testing.T) {
	store := repository.NewLocalStore(kv.NewMemory())
	ctx := context.Background()

	before, err := store.ListPosts(ctx)
	require.NoError(t, err)

	sum, err := NewSeeder(store, Options{Posts: 5, MaxComments: 3, MaxLikes: 4, MaxViews: 2, RandSeed: 1}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Posts)

	after, err := store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+5)

	comments, likes := 0, 0
	for _, p := range after[:5] {
		list, err := store.ListCommentsByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.CommentCount, len(list))
		comments += p.CommentCount
		likes += p.Likes
	}
	assert.Equal(t, sum.Comments, comments)
	assert.Equal(t, sum.Likes, likes)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	sum, err := NewSeeder(nil, Options{Posts: 3, MaxComments: 2, DryRun: true, RandSeed: 3}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Posts)
}
