package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	assert.NoError(t, NewNotifier(nil).Publish(context.Background(), EventCommentCreated, "p1", nil))

	var n *Notifier
	assert.NoError(t, n.Publish(context.Background(), EventCommentCreated, "p1", nil))
}

func TestPostChannel(t *testing.T) {
	assert.Equal(t, "blog:post:p1", PostChannel("p1"))
	assert.Equal(t, "blog:broadcast", BroadcastChannel())
}

func TestNotifier_PublishDeliversEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, PostChannel("p1"), BroadcastChannel())
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, n.Publish(ctx, EventPostLikeToggled, "p1", map[string]any{"liked": true, "likes_count": 1}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, PostChannel("p1"), msg.Channel)
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, EventPostLikeToggled, evt.Type)
		assert.Equal(t, "p1", evt.PostID)
		assert.Equal(t, true, evt.Payload.(map[string]any)["liked"])
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNotifier_PostLifecycleAlsoBroadcasts(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, BroadcastChannel())
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, n.Publish(ctx, EventCommentCreated, "p1", nil))
	require.NoError(t, n.Publish(ctx, EventPostCreated, "p2", nil))

	select {
	case msg := <-sub.Channel():
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, EventPostCreated, evt.Type)
		assert.Equal(t, "p2", evt.PostID)
	case <-time.After(time.Second):
		t.Fatal("broadcast was not delivered")
	}
}

func TestNotifier_PublishFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer func() { _ = rdb.Close() }()
	mr.Close()

	err := NewNotifier(rdb).Publish(context.Background(), EventCommentDeleted, "p1", nil)
	assert.Error(t, err)
}
