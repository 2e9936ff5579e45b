// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package cache provides the result stores behind related-posts caching.

Backends:
  - Memory: map with per-entry expiry, a periodic sweep, hit/miss stats
  - Badger: BadgerDB with native entry TTL; survives restarts so warmed
    lists are not lost on deploy

Both implement Store, which works on raw bytes. Callers own serialization.
DeletePrefix supports invalidating every list computed for one post.

Breaker wraps any Store in a sony/gobreaker circuit breaker. When the
backend keeps failing the circuit opens and calls return ErrCacheUnavailable
immediately; the related-posts engine treats that as a cache miss.

	store, err := cache.Open(cache.Options{
	    Backend:   cache.BackendBadger,
	    BadgerDir: "/data/related-cache",
	    Breaker:   cache.DefaultBreakerSettings(),
	}, logger)
*/
package cache
