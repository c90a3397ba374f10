package seed

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/models"
	"folio/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Options configure a seeding run.
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	// LikeRatio is the chance that a given user likes a given post.
	LikeRatio float64
	// ReplyRatio is the chance that a comment answers an earlier one.
	ReplyRatio float64
	MaxDays    int
	BcryptCost int
	RandSeed   int64
}

func (o Options) withDefaults() Options {
	if o.NumUsers <= 0 {
		o.NumUsers = 10
	}
	if o.NumPosts < 0 {
		o.NumPosts = 0
	}
	if o.MaxCommentsPerPost < 0 {
		o.MaxCommentsPerPost = 0
	}
	if o.LikeRatio < 0 || o.LikeRatio > 1 {
		o.LikeRatio = 0.3
	}
	if o.ReplyRatio < 0 || o.ReplyRatio > 1 {
		o.ReplyRatio = 0.3
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

// Result counts what a run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
	Likes    int
}

// Seed fills store with demo users, posts, threaded comments and likes.
func Seed(ctx context.Context, store *repository.Store, opts Options) (*Result, error) {
	f, err := NewFactory(store, opts)
	if err != nil {
		return nil, err
	}
	opts = f.opts

	slog.InfoContext(ctx, "seeding demo data",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	res := &Result{}
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		res.Users = append(res.Users, user)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[f.rng.Intn(len(res.Users))]
		post, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		res.Posts = append(res.Posts, post)

		n, err := f.seedThread(ctx, post, res.Users)
		if err != nil {
			return nil, err
		}
		res.Comments += n

		for _, user := range res.Users {
			if f.rng.Float64() >= opts.LikeRatio {
				continue
			}
			added, err := f.Like(ctx, post, user)
			if err != nil {
				return nil, fmt.Errorf("failed to like post: %w", err)
			}
			if added {
				res.Likes++
			}
		}
	}

	slog.InfoContext(ctx, "seeding complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.Posts)),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

// seedThread adds comments to post. Replies only target top-level comments.
func (f *Factory) seedThread(ctx context.Context, post *models.Post, users []*models.User) (int, error) {
	if f.opts.MaxCommentsPerPost == 0 {
		return 0, nil
	}
	count := f.rng.Intn(f.opts.MaxCommentsPerPost + 1)

	var roots []*models.Comment
	for i := 0; i < count; i++ {
		author := users[f.rng.Intn(len(users))]
		var parent *models.Comment
		if len(roots) > 0 && f.rng.Float64() < f.opts.ReplyRatio {
			parent = roots[f.rng.Intn(len(roots))]
		}
		comment, err := f.CreateComment(ctx, post, author, parent)
		if err != nil {
			return i, fmt.Errorf("failed to create comment: %w", err)
		}
		if parent == nil {
			roots = append(roots, comment)
		}
	}
	return count, nil
}
