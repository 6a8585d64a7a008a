// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VotesCast counts cast votes by direction and outcome.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_votes_cast_total",
		Help: "Total votes cast by direction and outcome (new, flip, duplicate)",
	}, []string{"direction", "outcome"})

	// NotificationsFanout counts notification records produced by type.
	NotificationsFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notifications_fanout_total",
		Help: "Total notification records produced by type",
	}, []string{"type"})

	// CacheRequests counts cache-aside lookups by key class and result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_requests_total",
		Help: "Cache-aside lookups by key class and result (hit, miss)",
	}, []string{"class", "result"})

	// PinToggles counts pin toggle operations by outcome.
	PinToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_pin_toggles_total",
		Help: "Pin toggle operations by outcome (pinned, unpinned, rejected)",
	}, []string{"outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
