package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records store query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CommentMutations counts successful comment mutations by kind.
	CommentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_comment_mutations_total",
		Help: "Total number of comment mutations",
	}, []string{"kind"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// AuthorCacheLookups counts author summary cache hits and misses.
	AuthorCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_author_cache_lookups_total",
		Help: "Author summary cache lookups by result",
	}, []string{"result"})

	// EventsPublished counts realtime events by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_events_published_total",
		Help: "Realtime events published by type and outcome",
	}, []string{"event_type", "outcome"})
)

// ObserveQuery records the latency of a store query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
