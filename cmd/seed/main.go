// Command main seeds the configured store with generated posts.
package main

import (
	"context"
	"flag"
	"log"

	"rumorplaza/internal/bootstrap"
	"rumorplaza/internal/config"
	"rumorplaza/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numPosts := flag.Int("posts", defaults.Posts, "Number of posts to create")
	maxComments := flag.Int("max-comments", defaults.MaxComments, "Maximum comments per post")
	maxLikes := flag.Int("max-likes", defaults.MaxLikes, "Maximum likes per post")
	maxViews := flag.Int("max-views", defaults.MaxViews, "Maximum views per post")
	dryRun := flag.Bool("dry-run", false, "Print generated posts without writing them")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	opts := seed.Options{
		Posts:       *numPosts,
		MaxComments: *maxComments,
		MaxLikes:    *maxLikes,
		MaxViews:    *maxViews,
		DryRun:      *dryRun,
		RandSeed:    *randSeed,
	}

	ctx := context.Background()
	var seeder *seed.Seeder
	if opts.DryRun {
		seeder = seed.NewSeeder(nil, opts)
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		rt, err := bootstrap.InitRuntime(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize runtime: %v", err)
		}
		defer func() { _ = rt.Close() }()
		seeder = seed.NewSeeder(rt.Store, opts)
	}

	sum, err := seeder.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed after %d posts: %v", sum.Posts, err)
	}
	log.Printf("Seeded %d posts, %d comments, %d likes, %d views", sum.Posts, sum.Comments, sum.Likes, sum.Views)
}
