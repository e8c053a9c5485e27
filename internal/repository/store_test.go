package repository

import (
	"context"
	"testing"

	"rumorplaza/internal/kv"
	"rumorplaza/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRankingPolicy(t *testing.T) {
	tests := []struct {
		raw     string
		want    RankingPolicy
		wantErr bool
	}{
		{"", RankByLikes, false},
		{"likes", RankByLikes, false},
		{" LIKES_VIEWS ", RankByLikesAndViews, false},
		{"views", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRankingPolicy(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestTracedStore_DelegatesAndKeepsErrors(t *testing.T) {
	ctx := context.Background()
	inner := NewLocalStore(kv.NewMemory())
	store := NewTracedStore(inner)

	assert.Equal(t, inner.Name(), store.Name())

	post, err := store.CreatePost(ctx, validDraft("traced"))
	require.NoError(t, err)

	_, err = store.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	title := "nope"
	_, err = store.UpdatePost(ctx, post.ID, "wrong", models.PostPatch{Title: &title})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	state, err := store.ToggleLike(ctx, post.ID, "client")
	require.NoError(t, err)
	assert.True(t, state.Liked)
}
