// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package metrics

import "time"

// RelatedObserver forwards related-posts engine events to the Prometheus
// collectors in this package. It satisfies recommend.Observer.
type RelatedObserver struct {
	// Backend labels cache errors (memory, badger).
	Backend string
}

// ObserveRequest records a lookup and whether it was served from cache.
func (o RelatedObserver) ObserveRequest(operation string, cacheHit bool) {
	RecordRelatedRequest(operation, cacheHit)
}

// ObserveCompute records a cache-miss computation.
func (o RelatedObserver) ObserveCompute(operation string, d time.Duration, candidates int) {
	RecordRelatedCompute(operation, d, candidates)
}

// ObserveRepositoryError records a repository failure.
func (o RelatedObserver) ObserveRepositoryError(operation string) {
	RelatedRepositoryErrors.WithLabelValues(operation).Inc()
}

// ObserveCacheError records a failed cache operation.
func (o RelatedObserver) ObserveCacheError(operation string) {
	backend := o.Backend
	if backend == "" {
		backend = "unknown"
	}
	CacheErrors.WithLabelValues(backend, operation).Inc()
}

// ObserveInvalidation records an invalidation.
func (o RelatedObserver) ObserveInvalidation(scope string, keys int) {
	RecordInvalidation(scope, keys)
}

// ObserveWarm records a warming pass.
func (o RelatedObserver) ObserveWarm(warmed int, d time.Duration) {
	RecordWarm(warmed, d)
}
