package service

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
)

// AuthorResolver turns a user id into a display-safe author summary. It never
// fails: dangling or empty ids resolve to a stand-in summary.
type AuthorResolver interface {
	Resolve(ctx context.Context, userID string) models.AuthorSummary
}

// UserAuthorResolver resolves authors from the user repository through the
// Redis cache-aside layer.
type UserAuthorResolver struct {
	users repository.UserRepository
	ttl   time.Duration
}

// NewUserAuthorResolver creates a resolver backed by users.
func NewUserAuthorResolver(users repository.UserRepository) *UserAuthorResolver {
	return &UserAuthorResolver{users: users, ttl: cache.AuthorTTL}
}

// Resolve implements AuthorResolver.
func (r *UserAuthorResolver) Resolve(ctx context.Context, userID string) models.AuthorSummary {
	if userID == "" {
		return models.AuthorSummary{Name: models.AnonymousAuthorName}
	}

	var summary models.AuthorSummary
	hit, err := cache.Aside(ctx, cache.AuthorKey(userID), &summary, r.ttl, func() error {
		user, err := r.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		summary = models.SummaryOf(user)
		return nil
	})
	if hit {
		observability.AuthorCacheLookups.WithLabelValues("hit").Inc()
	} else {
		observability.AuthorCacheLookups.WithLabelValues("miss").Inc()
	}

	if err != nil {
		if !models.IsNotFound(err) {
			slog.WarnContext(ctx, "author lookup failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return models.AuthorSummary{ID: userID, Name: models.UnknownAuthorName}
	}
	return summary
}

// resolveAuthors resolves each distinct id once.
func resolveAuthors(ctx context.Context, resolver AuthorResolver, ids []string) map[string]models.AuthorSummary {
	out := make(map[string]models.AuthorSummary, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		out[id] = resolver.Resolve(ctx, id)
	}
	return out
}

// summaryPtr returns a pointer to a copy of s.
func summaryPtr(s models.AuthorSummary) *models.AuthorSummary {
	return &s
}
