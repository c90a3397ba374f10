// Command main fills the configured store with demo users, posts, comments
// and likes.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"folio/internal/bootstrap"
	"folio/internal/config"
	"folio/internal/middleware"
	"folio/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 40, "Number of posts to create")
	maxComments := flag.Int("comments", 8, "Maximum comments per post")
	likeRatio := flag.Float64("like-ratio", 0.3, "Chance that a user likes a post")
	replyRatio := flag.Float64("reply-ratio", 0.3, "Chance that a comment is a reply")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	slog.SetDefault(middleware.Logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		if err := rt.Close(ctx); err != nil {
			log.Printf("Failed to close connections: %v", err)
		}
	}()

	res, err := seed.Seed(ctx, rt.Store, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		LikeRatio:          *likeRatio,
		ReplyRatio:         *replyRatio,
		RandSeed:           *randSeed,
	})
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		return
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes", len(res.Users), len(res.Posts), res.Comments, res.Likes)
	log.Printf("All demo users share the password: %s", seed.DemoPassword)
}
