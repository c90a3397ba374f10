package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/repository/memstore"
	"folio/internal/seed"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:              "test",
		Port:             "0",
		JWTSecret:        "test-secret-that-is-long-enough-123",
		StoreDriver:      driver,
		SQLitePath:       filepath.Join(t.TempDir(), "folio.db"),
		RedisURL:         "127.0.0.1:1",
		CommentMaxDepth:  1,
		CommentMaxLength: 10000,
	}
}

func TestInitRuntime_MemoryWithSeed(t *testing.T) {
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	rt, err := InitRuntime(ctx, testConfig(t, config.StoreDriverMemory), Options{
		Seed: &seed.Options{NumUsers: 3, NumPosts: 2, BcryptCost: bcrypt.MinCost, RandSeed: 7},
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, rt.Close(ctx)) }()

	assert.Nil(t, rt.Redis, "unreachable redis leaves caching disabled")
	assert.NoError(t, rt.Ping(ctx))

	posts, err := rt.Store.Posts.List(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestInitRuntime_SQLite(t *testing.T) {
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(t, config.StoreDriverSQLite)
	cfg.RedisURL = mr.Addr()

	rt, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)

	require.NotNil(t, rt.Redis)
	assert.NoError(t, rt.Ping(ctx))
	require.NoError(t, rt.Store.Users.Create(ctx, &models.User{ID: "u1", Name: "Alice", Email: "a@example.com", Password: "x"}))

	require.NoError(t, rt.Close(ctx))
	assert.Error(t, rt.Ping(ctx), "closed database no longer answers")
}

func TestInitRuntime_UnknownDriver(t *testing.T) {
	_, err := InitRuntime(context.Background(), testConfig(t, "cassandra"), Options{})
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestRuntime_CloseJoinsErrors(t *testing.T) {
	rt := NewRuntime(memstore.NewStore(), nil)
	var order []int
	rt.closers = []func(context.Context) error{
		func(context.Context) error { order = append(order, 1); return errors.New("first") },
		func(context.Context) error { order = append(order, 2); return nil },
		func(context.Context) error { order = append(order, 3); return errors.New("third") },
	}

	err := rt.Close(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "first")
	assert.ErrorContains(t, err, "third")
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.NoError(t, rt.Close(context.Background()))
}
