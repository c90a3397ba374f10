package server

import (
	"net/http"
	"strings"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentHandlers_Thread(t *testing.T) {
	env := newTestEnv(t, nil)
	u1 := env.addUser(t, "u1", "Ursula")
	u2 := env.addUser(t, "u2", "Victor")
	env.addPost(t, "hello-world", "u1")

	resp, body := env.do(t, http.MethodPost, "/api/posts/hello-world/comments", u1, map[string]string{"content": "Nice post!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	top := decode[models.Comment](t, body)
	assert.Equal(t, "Nice post!", top.Content)
	require.NotNil(t, top.Author)
	assert.Equal(t, "Ursula", top.Author.Name)

	resp, body = env.do(t, http.MethodPost, "/api/posts/hello-world/comments", u2, map[string]string{
		"content":   "Thanks!",
		"parent_id": top.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	reply := decode[models.Comment](t, body)

	resp, body = env.do(t, http.MethodGet, "/api/posts/hello-world/comments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	threads := decode[[]*models.Comment](t, body)
	require.Len(t, threads, 1)
	assert.Equal(t, top.ID, threads[0].ID)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
	assert.Equal(t, "Victor", threads[0].Replies[0].Author.Name)

	// replies and the author summary are always present in the payload
	assert.Contains(t, string(body), `"replies":[]`)
	assert.Contains(t, string(body), `"image":null`)
}

func TestCommentHandlers_ListUnknownPost(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodGet, "/api/posts/missing/comments", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestCommentHandlers_CreateErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.addUser(t, "u1", "Alice")
	env.addPost(t, "post-1", "u1")

	tests := []struct {
		name   string
		path   string
		token  string
		body   map[string]string
		status int
		code   string
	}{
		{"anonymous", "/api/posts/post-1/comments", "", map[string]string{"content": "hi"}, http.StatusUnauthorized, models.CodeUnauthorized},
		{"blank content", "/api/posts/post-1/comments", token, map[string]string{"content": "   "}, http.StatusBadRequest, models.CodeValidation},
		{"too long", "/api/posts/post-1/comments", token, map[string]string{"content": strings.Repeat("x", 10001)}, http.StatusBadRequest, models.CodeValidation},
		{"unknown post", "/api/posts/missing/comments", token, map[string]string{"content": "hi"}, http.StatusNotFound, models.CodeNotFound},
		{"unknown parent", "/api/posts/post-1/comments", token, map[string]string{"content": "hi", "parent_id": "nope"}, http.StatusNotFound, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, body).Code)
		})
	}

	post, err := env.server.store.Posts.GetBySlug(t.Context(), "post-1")
	require.NoError(t, err)
	assert.Zero(t, post.CommentsCount)
}

func TestCommentHandlers_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.addUser(t, "alice", "Alice")
	bob := env.addUser(t, "bob", "Bob")
	env.addPost(t, "post-1", "alice")

	resp, body := env.do(t, http.MethodPost, "/api/posts/post-1/comments", alice, map[string]string{"content": "original"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	c := decode[models.Comment](t, body)
	path := "/api/comments/" + c.ID

	resp, _ = env.do(t, http.MethodPut, path, bob, map[string]string{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/comments/missing", alice, map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, path, alice, map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edited", decode[models.Comment](t, body).Content)

	resp, body = env.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, body).Code)

	resp, _ = env.do(t, http.MethodDelete, path+"?confirm=wrong", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, path+"?confirm="+c.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/posts/post-1/comments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]*models.Comment](t, body), 1)

	resp, body = env.do(t, http.MethodDelete, path, alice, map[string]string{"confirm": c.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, float64(1), decode[map[string]any](t, body)["removed"])

	resp, body = env.do(t, http.MethodGet, "/api/posts/post-1/comments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = env.do(t, http.MethodDelete, path+"?confirm="+c.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
