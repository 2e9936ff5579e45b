// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package metrics provides Prometheus metrics for the related-posts engine.

All collectors are registered with the default registry through promauto and
are served by the ops HTTP endpoint at /metrics.

# Available Metrics

Related posts:
  - related_posts_requests_total: lookups (counter)
    Labels: operation (related, by_category, by_author), cache (hit, miss)
  - related_posts_compute_duration_seconds: cache-miss computation time (histogram)
  - related_posts_candidates_scored: candidates scored per computation (histogram)
  - related_posts_repository_errors_total: repository failures degraded to empty results
  - related_posts_invalidations_total: invalidations by scope (post, all)
  - related_posts_warmed_total / related_posts_warm_duration_seconds: cache warming

Result cache:
  - result_cache_errors_total: failed cache operations by backend and operation
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_transitions_total

Events:
  - post_events_published_total, post_events_handled_total

Repository:
  - duckdb_query_duration_seconds, duckdb_query_errors_total

# Usage

	start := time.Now()
	posts, err := repo.GetPublishedExcluding(ctx, id)
	metrics.RecordDBQuery("published_excluding", time.Since(start), err)
*/
package metrics
