package seed

import (
	"context"
	"fmt"
	"log"

	"rumorplaza/internal/repository"
)

// Summary counts what a seeding run wrote.
type Summary struct {
	Posts    int
	Comments int
	Likes    int
	Views    int
}

// Seeder writes generated data through a Store so counters stay consistent.
type Seeder struct {
	store   repository.Store
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder. store may be nil in dry-run mode.
func NewSeeder(store repository.Store, opts Options) *Seeder {
	return &Seeder{store: store, factory: NewFactory(opts.RandSeed), opts: opts}
}

// Run creates opts.Posts posts, each with a random number of comments, likes and views.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for i := 0; i < s.opts.Posts; i++ {
		draft := s.factory.BuildPostDraft()
		comments := s.factory.IntUpTo(s.opts.MaxComments)
		likes := s.factory.IntUpTo(s.opts.MaxLikes)
		views := s.factory.IntUpTo(s.opts.MaxViews)

		if s.opts.DryRun {
			log.Printf("[dry-run] post %q (%s) comments=%d likes=%d views=%d",
				draft.Title, draft.Category, comments, likes, views)
			sum.Posts++
			sum.Comments += comments
			sum.Likes += likes
			sum.Views += views
			continue
		}

		post, err := s.store.CreatePost(ctx, draft)
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		for j := 0; j < comments; j++ {
			if _, err := s.store.AddComment(ctx, s.factory.BuildCommentDraft(post.ID)); err != nil {
				return sum, fmt.Errorf("add comment: %w", err)
			}
			sum.Comments++
		}
		for j := 0; j < likes; j++ {
			if _, err := s.store.ToggleLike(ctx, post.ID, s.factory.ClientID()); err != nil {
				return sum, fmt.Errorf("toggle like: %w", err)
			}
			sum.Likes++
		}
		for j := 0; j < views; j++ {
			if err := s.store.IncrementViews(ctx, post.ID); err != nil {
				return sum, fmt.Errorf("increment views: %w", err)
			}
			sum.Views++
		}
	}
	return sum, nil
}
