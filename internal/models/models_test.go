package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" Gossip ")
	assert.True(t, ok)
	assert.Equal(t, CategoryGossip, c)

	_, ok = ParseCategory("all")
	assert.False(t, ok)
	_, ok = ParseCategory("sports")
	assert.False(t, ok)
}

func TestGetCategoryInfoFallsBack(t *testing.T) {
	assert.Equal(t, "Rumor", GetCategoryInfo(CategoryRumor).ShortLabel)
	assert.Equal(t, CategoryGossip, GetCategoryInfo("nope").Key)
}

func TestNormalizeNickname(t *testing.T) {
	assert.Equal(t, DefaultNickname, NormalizeNickname(""))
	assert.Equal(t, DefaultNickname, NormalizeNickname("   "))
	assert.Equal(t, "kim", NormalizeNickname("kim"))
}

func TestPostPatchApply(t *testing.T) {
	post := &Post{Title: "old", Nickname: "a", Images: []string{"x"}}
	title := "new title"
	blank := ""
	imgs := []string{}
	PostPatch{Title: &title, Nickname: &blank, Images: &imgs}.Apply(post)

	assert.Equal(t, "new title", post.Title)
	assert.Equal(t, DefaultNickname, post.Nickname)
	assert.Empty(t, post.Images)
	assert.True(t, PostPatch{}.Empty())
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hashed)

	assert.True(t, CheckPassword(hashed, "1234"))
	assert.False(t, CheckPassword(hashed, "4321"))

	// legacy plaintext rows
	assert.True(t, CheckPassword("1234", "1234"))
	assert.False(t, CheckPassword("1234", "12345"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(NewValidationError("bad")))
	assert.Equal(t, http.StatusNotFound, StatusFor(NewNotFoundError("Post", "x")))
	assert.Equal(t, http.StatusForbidden, StatusFor(NewForbiddenError("no")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(NewInternalError(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
}
