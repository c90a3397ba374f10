package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/internal/bootstrap"
	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/repository/memstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-123"

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		Port:             "0",
		JWTSecret:        testSecret,
		StoreDriver:      config.StoreDriverMemory,
		AllowedOrigins:   "http://localhost:5173",
		CommentMaxDepth:  1,
		CommentMaxLength: 10000,
	}
}

type testEnv struct {
	server *Server
	app    *fiber.App
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(), bootstrap.NewRuntime(memstore.NewStore(), rdb))
	require.NoError(t, err)
	return &testEnv{server: s, app: s.App()}
}

// newRedisEnv runs the server against miniredis, which also backs the cache.
func newRedisEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })
	return newTestEnv(t, rdb), mr
}

// addUser stores a user and returns a token for it.
func (e *testEnv) addUser(t *testing.T, id, name string) string {
	t.Helper()
	user := &models.User{ID: id, Name: name, Email: id + "@example.com", Password: "x"}
	require.NoError(t, e.server.store.Users.Create(context.Background(), user))
	token, err := e.server.generateToken(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) addPost(t *testing.T, slug, authorID string) *models.Post {
	t.Helper()
	post := &models.Post{ID: "id-" + slug, Slug: slug, Title: slug, Content: "body", AuthorID: authorID, CreatedAt: time.Now().UTC()}
	require.NoError(t, e.server.store.Posts.Create(context.Background(), post))
	return post
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func signToken(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "degraded", got["status"])
}

func TestReadinessCheck_WithRedis(t *testing.T) {
	env, mr := newRedisEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decode[map[string]any](t, body)["status"])

	mr.Close()
	resp, _ = env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)
	valid := env.addUser(t, "u1", "Alice")
	now := time.Now()

	registered := func(mutate func(*jwt.RegisteredClaims)) tokenClaims {
		rc := jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		}
		mutate(&rc)
		return tokenClaims{RegisteredClaims: rc}
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-entirely-123456789", registered(func(*jwt.RegisteredClaims) {})), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, testSecret, registered(func(c *jwt.RegisteredClaims) { c.Issuer = "someone-else" })), http.StatusUnauthorized},
		{"wrong audience", "Bearer " + signToken(t, testSecret, registered(func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"other"} })), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, registered(func(c *jwt.RegisteredClaims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute)) })), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testSecret, registered(func(c *jwt.RegisteredClaims) { c.Subject = "" })), http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := env.app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestOptionalAuth_IgnoresBadTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.addUser(t, "u1", "Alice")
	env.addPost(t, "post-1", "u1")

	resp, _ := env.do(t, http.MethodPost, "/api/posts/post-1/like", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/posts/post-1", "garbage", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[models.Post](t, body).Liked)

	resp, body = env.do(t, http.MethodGet, "/api/posts/post-1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.Post](t, body).Liked)
}

func TestLogout_RevokesToken(t *testing.T) {
	env, mr := newRedisEnv(t)
	token := env.addUser(t, "u1", "Alice")

	resp, _ := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, mr.Keys(), 1)

	resp, body := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, body).Error)
}

func TestLogout_WithoutRedis(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.addUser(t, "u1", "Alice")

	resp, _ := env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, _ := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (e *testEnv) doRaw(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}
