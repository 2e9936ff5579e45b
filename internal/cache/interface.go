// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrCacheUnavailable is returned when a backend cannot serve a request,
// including when the circuit breaker is open.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Store is a byte-oriented key/value cache with per-entry TTL. Every
// backend in this package implements it, and it satisfies the cache
// collaborator expected by the related-posts engine.
type Store interface {
	// Get returns the value and true when key exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and returns how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Close releases backend resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	// BackendMemory keeps entries in process memory.
	BackendMemory Backend = "memory"

	// BackendBadger persists entries in a BadgerDB directory so warm caches
	// survive restarts.
	BackendBadger Backend = "badger"
)

// Options configures Open.
type Options struct {
	Backend Backend

	// BadgerDir is required for BackendBadger.
	BadgerDir string

	// CleanupInterval controls expired-entry sweeps for the memory backend.
	CleanupInterval time.Duration

	// Breaker wraps the backend in a circuit breaker when enabled.
	Breaker BreakerSettings
}

// Open creates the configured backend, optionally behind a circuit breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(opts Options, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch opts.Backend {
	case BackendBadger:
		store, err = OpenBadger(opts.BadgerDir, logger)
		if err != nil {
			return nil, err
		}
	case BackendMemory, "":
		store = NewMemory(opts.CleanupInterval)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}

	if opts.Breaker.Enabled {
		store = NewBreaker(store, string(opts.Backend), opts.Breaker, logger)
	}

	logger.Info().
		Str("backend", string(opts.Backend)).
		Bool("circuit_breaker", opts.Breaker.Enabled).
		Msg("result cache opened")

	return store, nil
}

// StartMaintenance starts the background upkeep of store's backend, looking
// through a Breaker if present. Only Badger needs any: its value log is
// garbage collected every interval until ctx is canceled. It reports
// whether a maintenance loop was started.
func StartMaintenance(ctx context.Context, store Store, interval time.Duration) bool {
	if b, ok := store.(*Breaker); ok {
		store = b.Unwrap()
	}
	bg, ok := store.(*Badger)
	if !ok || interval <= 0 {
		return false
	}
	bg.StartGC(ctx, interval)
	return true
}

// Verify interface implementations at compile time
var (
	_ Store = (*Memory)(nil)
	_ Store = (*Badger)(nil)
	_ Store = (*Breaker)(nil)
)
