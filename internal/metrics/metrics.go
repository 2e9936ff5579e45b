// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache result label values.
const (
	CacheResultHit  = "hit"
	CacheResultMiss = "miss"
)

var (
	// Related posts metrics
	RelatedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "related_posts_requests_total",
			Help: "Total related-posts lookups by operation and cache result",
		},
		[]string{"operation", "cache"}, // operation: related, by_category, by_author
	)

	RelatedComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "related_posts_compute_duration_seconds",
			Help:    "Time spent computing related posts on a cache miss",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	RelatedCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "related_posts_candidates_scored",
			Help:    "Number of candidate posts scored per computation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	RelatedRepositoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "related_posts_repository_errors_total",
			Help: "Repository failures that degraded to an empty result",
		},
		[]string{"operation"},
	)

	RelatedInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "related_posts_invalidations_total",
			Help: "Cache invalidations by scope",
		},
		[]string{"scope"}, // post, all
	)

	RelatedKeysInvalidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "related_posts_keys_invalidated_total",
			Help: "Number of cache keys removed by invalidation",
		},
	)

	RelatedPostsWarmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "related_posts_warmed_total",
			Help: "Number of popular posts whose related lists were precomputed",
		},
	)

	RelatedWarmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "related_posts_warm_duration_seconds",
			Help:    "Duration of a cache warming pass",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
	)

	// Result cache metrics
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_errors_total",
			Help: "Result cache operations that failed and were treated as a miss or no-op",
		},
		[]string{"backend", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_events_published_total",
			Help: "Post mutation events published",
		},
		[]string{"type"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_events_handled_total",
			Help: "Post mutation events handled by result",
		},
		[]string{"type", "result"},
	)

	// Repository metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Ops HTTP metrics
	OpsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_http_requests_total",
			Help: "Total number of ops endpoint requests",
		},
		[]string{"method", "route", "status"},
	)

	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_http_request_duration_seconds",
			Help:    "Ops endpoint request duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2},
		},
		[]string{"route"},
	)

	OpsActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ops_http_active_requests",
			Help: "Number of ops endpoint requests in flight",
		},
	)
)

// RecordRelatedRequest records a related-posts lookup.
func RecordRelatedRequest(operation string, cacheHit bool) {
	result := CacheResultMiss
	if cacheHit {
		result = CacheResultHit
	}
	RelatedRequests.WithLabelValues(operation, result).Inc()
}

// RecordRelatedCompute records the cost of a cache-miss computation.
func RecordRelatedCompute(operation string, duration time.Duration, candidates int) {
	RelatedComputeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if candidates > 0 {
		RelatedCandidatesScored.Observe(float64(candidates))
	}
}

// RecordInvalidation records a cache invalidation and the keys it removed.
func RecordInvalidation(scope string, keys int) {
	RelatedInvalidations.WithLabelValues(scope).Inc()
	if keys > 0 {
		RelatedKeysInvalidated.Add(float64(keys))
	}
}

// RecordWarm records a completed warming pass.
func RecordWarm(warmed int, duration time.Duration) {
	RelatedPostsWarmed.Add(float64(warmed))
	RelatedWarmDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a repository query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordOpsRequest records a served ops endpoint request.
func RecordOpsRequest(method, route, statusCode string, duration time.Duration) {
	OpsRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	OpsRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight ops request gauge.
func TrackActiveRequest(start bool) {
	if start {
		OpsActiveRequests.Inc()
	} else {
		OpsActiveRequests.Dec()
	}
}
