// Package seed generates demo posts, comments and likes for development
// databases. It is intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"rumorplaza/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Options control how much data a Seeder writes.
type Options struct {
	Posts       int
	MaxComments int
	MaxLikes    int
	MaxViews    int
	DryRun      bool
	// RandSeed makes generated content reproducible. Zero picks a random seed.
	RandSeed int64
}

// DefaultOptions returns the options used by the seed command.
func DefaultOptions() Options {
	return Options{Posts: 40, MaxComments: 6, MaxLikes: 25, MaxViews: 50}
}

var categoryKeys = []string{
	string(models.CategoryGossip),
	string(models.CategoryRumor),
	string(models.CategoryAmazing),
}

var openers = map[models.Category][]string{
	models.CategoryGossip:  {"Did you hear", "Word is that", "Apparently", "Someone spotted"},
	models.CategoryRumor:   {"Rumor has it", "I heard that", "People are saying", "Unconfirmed, but"},
	models.CategoryAmazing: {"You won't believe it:", "This actually happened:", "True story:", "Still shaking:"},
}

// Factory builds drafts with realistic-looking content.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(randSeed int64) *Factory {
	return &Factory{faker: gofakeit.New(randSeed)}
}

// BuildPostDraft returns a post draft that passes author-side validation.
func (f *Factory) BuildPostDraft() models.PostDraft {
	category := models.Category(f.faker.RandomString(categoryKeys))
	opener := f.faker.RandomString(openers[category])

	nickname := ""
	if f.faker.Bool() {
		nickname = truncate(f.faker.Username(), 20)
	}

	images := []string{}
	for i := f.faker.IntRange(0, 2); i > 0; i-- {
		images = append(images, fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()))
	}

	return models.PostDraft{
		Category: category,
		Nickname: nickname,
		Password: f.faker.Password(true, false, true, false, false, 6),
		Title:    truncate(opener+" "+strings.TrimSuffix(f.faker.Sentence(6), "."), 100),
		Content:  f.faker.Paragraph(f.faker.IntRange(1, 3), 3, 12, "\n\n"),
		Images:   images,
	}
}

// BuildCommentDraft returns a comment draft for postID.
func (f *Factory) BuildCommentDraft(postID string) models.CommentDraft {
	nickname := ""
	if f.faker.Bool() {
		nickname = truncate(f.faker.Username(), 20)
	}
	return models.CommentDraft{
		PostID:   postID,
		Nickname: nickname,
		Content:  truncate(f.faker.Sentence(f.faker.IntRange(3, 20)), 1000),
	}
}

// ClientID returns a synthetic client identity.
func (f *Factory) ClientID() string {
	return f.faker.UUID()
}

// IntUpTo returns a number in [0, n].
func (f *Factory) IntUpTo(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.IntRange(0, n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
