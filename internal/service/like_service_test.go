package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"folio/internal/models"
	"folio/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_ToggleScenario(t *testing.T) {
	f := newFixture(t, CommentLimits{})
	f.addPost(t, "post-1", "author")
	ctx := context.Background()

	liked, err := f.likes.Toggle(ctx, "post-1", "alice")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), f.post(t, "post-1").LikesCount)

	liked, err = f.likes.Toggle(ctx, "post-1", "alice")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), f.post(t, "post-1").LikesCount)

	isLiked, err := f.likes.IsLiked(ctx, "post-1", "alice")
	require.NoError(t, err)
	assert.False(t, isLiked)

	isLiked, err = f.likes.IsLiked(ctx, "post-1", "bob")
	require.NoError(t, err)
	assert.False(t, isLiked)

	assert.Equal(t, []string{notifications.EventPostLikeToggled, notifications.EventPostLikeToggled}, f.events.types())
}

func TestLikeService_IsLikedAfterSingleToggle(t *testing.T) {
	f := newFixture(t, CommentLimits{})
	f.addPost(t, "post-1", "author")
	ctx := context.Background()

	_, err := f.likes.Toggle(ctx, "post-1", "alice")
	require.NoError(t, err)

	isLiked, err := f.likes.IsLiked(ctx, "post-1", "alice")
	require.NoError(t, err)
	assert.True(t, isLiked)

	isLiked, err = f.likes.IsLiked(ctx, "post-1", "bob")
	require.NoError(t, err)
	assert.False(t, isLiked)
}

func TestLikeService_Errors(t *testing.T) {
	f := newFixture(t, CommentLimits{})
	f.addPost(t, "post-1", "author")
	ctx := context.Background()

	_, err := f.likes.Toggle(ctx, "post-1", "")
	assertUnauthorizedError(t, err)

	_, err = f.likes.IsLiked(ctx, "post-1", "")
	assertUnauthorizedError(t, err)

	_, err = f.likes.Toggle(ctx, "missing", "alice")
	assertNotFoundError(t, err)

	_, err = f.likes.Likers(ctx, "missing")
	assertNotFoundError(t, err)

	assert.Zero(t, f.post(t, "post-1").LikesCount)
	assert.Empty(t, f.events.types())
}

func TestLikeService_Likers(t *testing.T) {
	f := newFixture(t, CommentLimits{})
	f.addUser(t, "u-alice", "Alice")
	f.addUser(t, "u-bob", "")
	f.addPost(t, "post-1", "author")
	ctx := context.Background()

	for _, id := range []string{"u-alice", "u-bob", "u-ghost"} {
		_, err := f.likes.Toggle(ctx, "post-1", id)
		require.NoError(t, err)
	}

	likers, err := f.likes.Likers(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, likers, 3)

	byID := map[string]models.AuthorSummary{}
	for _, l := range likers {
		byID[l.ID] = l
	}
	assert.Equal(t, "Alice", byID["u-alice"].Name)
	assert.Equal(t, models.AnonymousAuthorName, byID["u-bob"].Name)
	assert.Equal(t, models.UnknownAuthorName, byID["u-ghost"].Name)
}

func TestLikeService_ConcurrentTogglesKeepCounterConsistent(t *testing.T) {
	f := newFixture(t, CommentLimits{})
	post := f.addPost(t, "post-1", "author")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.likes.Toggle(ctx, "post-1", fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(20), f.post(t, "post-1").LikesCount)

	// racing toggles by a single user must never leave the counter out of
	// step with the ledger
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.likes.Toggle(ctx, "post-1", "user-0")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids, err := f.store.Likes.ListUserIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(ids)), f.post(t, "post-1").LikesCount)
}
