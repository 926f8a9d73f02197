// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records store latency by driver, operation and collection.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devconnector_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation", "table"})

	// AuthFailures counts rejected bearer tokens by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_auth_failures_total",
		Help: "Requests rejected by the auth middleware",
	}, []string{"reason"})

	// AuthAttempts counts register and login outcomes.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_auth_attempts_total",
		Help: "Registration and login attempts by outcome",
	}, []string{"operation", "outcome"})

	// PostMutations counts post aggregate mutations by operation and outcome code.
	PostMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_post_mutations_total",
		Help: "Post mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// EventsPublished counts post activity events sent to Redis.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_events_published_total",
		Help: "Post activity events published by type and result",
	}, []string{"event_type", "result"})
)

// QueryTimer records the latency of store operations for one driver.
type QueryTimer struct {
	driver string
}

// NewQueryTimer returns a timer labelled with driver.
func NewQueryTimer(driver string) *QueryTimer {
	return &QueryTimer{driver: driver}
}

// Track returns a function that records query latency when called (e.g. defer).
func (m *QueryTimer) Track(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(m.driver, operation, table).Observe(time.Since(start).Seconds())
	}
}
