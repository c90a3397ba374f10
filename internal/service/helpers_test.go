package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeNotFound)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeUnauthorized)
}

type publishedEvent struct {
	Type    string
	PostID  string
	Payload any
}

// recordingPublisher captures events instead of sending them.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, postID string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, PostID: postID, Payload: payload})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every service to one in-memory store.
type fixture struct {
	db       *memstore.DB
	store    *repository.Store
	events   *recordingPublisher
	authors  *UserAuthorResolver
	comments *CommentService
	likes    *LikeService
	posts    *PostService
	users    *UserService
}

func newFixture(t *testing.T, limits CommentLimits) *fixture {
	t.Helper()
	db := memstore.New()
	store := db.Store()
	events := &recordingPublisher{}
	authors := NewUserAuthorResolver(store.Users)
	users := NewUserService(store.Users)
	return &fixture{
		db:       db,
		store:    store,
		events:   events,
		authors:  authors,
		comments: NewCommentService(store.Comments, store.Posts, authors, events, limits),
		likes:    NewLikeService(store.Likes, store.Posts, authors, events),
		posts:    NewPostService(store.Posts, store.Comments, store.Likes, authors, events, users.IsAdmin),
		users:    users,
	}
}

func (f *fixture) addUser(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.store.Users.Create(context.Background(), &models.User{
		ID: id, Name: name, Email: id + "@example.com", Password: "x",
	}))
}

// addPost stores a post whose id equals its slug, matching the scenarios
// that address posts by either.
func (f *fixture) addPost(t *testing.T, slug, authorID string) *models.Post {
	t.Helper()
	post := &models.Post{
		ID: slug, Slug: slug, Title: slug, Content: "body", AuthorID: authorID,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.store.Posts.Create(context.Background(), post))
	return post
}

func (f *fixture) post(t *testing.T, slug string) *models.Post {
	t.Helper()
	p, err := f.store.Posts.GetBySlug(context.Background(), slug)
	require.NoError(t, err)
	return p
}
