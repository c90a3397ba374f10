// Package bootstrap opens the connections a process needs according to the
// configuration: the storage backend, Redis and the tracer provider.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/docstore"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/repository/memstore"
	"folio/internal/seed"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed, when set, fills the store with demo data after connecting.
	Seed *seed.Options
	// Tracing enables the OpenTelemetry tracer provider.
	Tracing bool
}

// Runtime holds the initialized dependencies.
type Runtime struct {
	Store *repository.Store
	// Redis is nil when the server is unreachable; caching, rate limits and
	// events are then disabled.
	Redis *redis.Client

	ping    func(context.Context) error
	closers []func(context.Context) error
}

// NewRuntime wraps an already built store. Ping always succeeds.
func NewRuntime(store *repository.Store, rdb *redis.Client) *Runtime {
	return &Runtime{
		Store: store,
		Redis: rdb,
		ping:  func(context.Context) error { return nil },
	}
}

// InitRuntime connects the configured store and Redis.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	if opts.Tracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "folio-api",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampler,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, shutdown)
	}

	if err := rt.openStore(ctx, cfg); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()
	if rt.Redis != nil {
		rdb := rt.Redis
		rt.closers = append(rt.closers, func(context.Context) error { return rdb.Close() })
	}

	if opts.Seed != nil {
		if _, err := seed.Seed(ctx, rt.Store, *opts.Seed); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		rt.Store = repository.NewGormStore(db)
		rt.ping = func(ctx context.Context) error { return database.Ping(ctx, db) }
		rt.closers = append(rt.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})

	case config.StoreDriverMongo:
		db, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("mongo connection failed: %w", err)
		}
		rt.Store = db.Store()
		rt.ping = db.Ping
		rt.closers = append(rt.closers, db.Disconnect)

	case config.StoreDriverMemory:
		slog.WarnContext(ctx, "using the in-memory store; data is lost on restart")
		rt.Store = memstore.NewStore()
		rt.ping = func(context.Context) error { return nil }

	default:
		return fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	return nil
}

// Ping reports whether the store answers.
func (rt *Runtime) Ping(ctx context.Context) error {
	if rt.ping == nil {
		return errors.New("store not initialized")
	}
	return rt.ping(ctx)
}

// Close releases every connection in reverse order of opening.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
