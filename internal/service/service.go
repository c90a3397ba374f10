// Package service holds the blog's business rules. Services depend only on the
// repository port, an AuthorResolver and an EventPublisher, so every storage
// backend and the in-memory store run the same logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventPublisher delivers activity events after a mutation has been stored.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, postID string, payload any) error
}

// AdminChecker reports whether a user has administrator rights.
type AdminChecker func(ctx context.Context, userID string) (bool, error)

// newID returns a time-ordered identifier so ties on created_at still sort by
// creation order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// now is replaced in tests that need deterministic timestamps.
var now = func() time.Time {
	return time.Now().UTC()
}

// publish sends an event and logs, never returns, delivery failures.
func publish(ctx context.Context, events EventPublisher, eventType, postID string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, eventType, postID, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", eventType),
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
	}
}
