package service

import (
	"context"
	"log/slog"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LikeService maintains the per-post set of users who liked it.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	authors  AuthorResolver
	events   EventPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	authors AuthorResolver,
	events EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
		authors:  authors,
		events:   events,
	}
}

func (s *LikeService) resolvePost(ctx context.Context, slug, userID string) (*models.Post, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.postRepo.GetBySlug(ctx, slug)
}

// Toggle flips userID's like on the post and returns the resulting state. The
// likes counter only moves when the membership row actually changed, so
// concurrent toggles cannot drift it.
func (s *LikeService) Toggle(ctx context.Context, slug, userID string) (liked bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "LikeService", "Toggle", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.resolvePost(ctx, slug, userID)
	if err != nil {
		return false, err
	}

	current, err := s.likeRepo.IsLiked(ctx, post.ID, userID)
	if err != nil {
		return false, err
	}

	var changed bool
	if current {
		changed, err = s.likeRepo.Remove(ctx, post.ID, userID)
	} else {
		changed, err = s.likeRepo.Add(ctx, post.ID, userID)
	}
	if err != nil {
		return false, err
	}
	liked = !current

	if changed {
		delta := int64(1)
		if !liked {
			delta = -1
		}
		if err := s.postRepo.IncrementCounter(ctx, post.ID, models.CounterLikes, delta); err != nil {
			slog.WarnContext(ctx, "failed to update likes counter",
				slog.String("post_id", post.ID), slog.String("error", err.Error()))
		}
		cache.InvalidatePost(ctx, post.Slug)
		publish(ctx, s.events, notifications.EventPostLikeToggled, post.ID, map[string]any{
			"user_id": userID,
			"liked":   liked,
		})
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues(state).Inc()
	return liked, nil
}

// IsLiked reports whether userID currently likes the post.
func (s *LikeService) IsLiked(ctx context.Context, slug, userID string) (bool, error) {
	post, err := s.resolvePost(ctx, slug, userID)
	if err != nil {
		return false, err
	}
	return s.likeRepo.IsLiked(ctx, post.ID, userID)
}

// Likers returns the author summaries of everyone who liked the post.
func (s *LikeService) Likers(ctx context.Context, slug string) ([]models.AuthorSummary, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	ids, err := s.likeRepo.ListUserIDs(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	authors := resolveAuthors(ctx, s.authors, ids)
	out := make([]models.AuthorSummary, len(ids))
	for i, id := range ids {
		out[i] = authors[id]
	}
	return out, nil
}
