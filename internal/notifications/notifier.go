// Package notifications publishes blog activity events into Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated     = "post_created"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventPostLikeToggled = "post_like_toggled"
	EventCommentCreated  = "comment_created"
	EventCommentUpdated  = "comment_updated"
	EventCommentDeleted  = "comment_deleted"
)

const (
	broadcastChannel  = "blog:broadcast"
	postChannelPrefix = "blog:post:"
	publishTimeout    = 2 * time.Second
)

// Event is the envelope written to every channel.
type Event struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PostChannel returns the channel carrying events for one post.
func PostChannel(postID string) string {
	return postChannelPrefix + postID
}

// BroadcastChannel returns the channel carrying site-wide events.
func BroadcastChannel() string {
	return broadcastChannel
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends an event to its post channel. Post lifecycle events also go to
// the broadcast channel.
func (n *Notifier) Publish(ctx context.Context, eventType, postID string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	body, err := json.Marshal(Event{
		Type:       eventType,
		PostID:     postID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		observability.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	// Detached from the request so a client disconnect does not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	channels := []string{PostChannel(postID)}
	switch eventType {
	case EventPostCreated, EventPostDeleted:
		channels = append(channels, broadcastChannel)
	}
	for _, ch := range channels {
		if err := n.rdb.Publish(ctx, ch, body).Err(); err != nil {
			observability.EventsPublished.WithLabelValues(eventType, "error").Inc()
			return fmt.Errorf("publish %s to %s: %w", eventType, ch, err)
		}
	}

	observability.EventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}
