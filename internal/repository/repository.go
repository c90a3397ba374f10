// Package repository provides data access layer implementations for the application.
//
// The interfaces in this file are the storage port the services depend on. The
// gorm-backed implementations live alongside them; memstore and docstore provide
// in-memory and MongoDB implementations of the same contracts.
package repository

import (
	"context"

	"folio/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// GetByID returns a NOT_FOUND AppError when the user does not exist.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns (nil, nil) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// List returns posts newest first. An empty category matches every post.
	List(ctx context.Context, limit, offset int, category string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// IncrementCounter atomically adds delta to one denormalized counter.
	IncrementCounter(ctx context.Context, postID string, field models.CounterField, delta int64) error
}

// CommentRepository defines the interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByPost returns every comment of a post, flat, oldest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	// Update persists content and updated_at only.
	Update(ctx context.Context, comment *models.Comment) error
	// Delete removes the given comments and reports how many existed.
	Delete(ctx context.Context, ids ...string) (int64, error)
	DeleteByPost(ctx context.Context, postID string) error
}

// LikeRepository defines the interface for the post like ledger.
type LikeRepository interface {
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	// Add records the like and reports whether it was newly inserted.
	Add(ctx context.Context, postID, userID string) (bool, error)
	// Remove deletes the like and reports whether one existed.
	Remove(ctx context.Context, postID, userID string) (bool, error)
	ListUserIDs(ctx context.Context, postID string) ([]string, error)
	DeleteByPost(ctx context.Context, postID string) error
}

// Store bundles one implementation of every repository.
type Store struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Likes    LikeRepository
}
