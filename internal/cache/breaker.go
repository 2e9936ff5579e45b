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
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/devblog/internal/metrics"
)

// BreakerSettings configures the circuit breaker around a backend.
type BreakerSettings struct {
	Enabled bool

	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerSettings opens after five consecutive failures and probes
// again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Enabled:          true,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// Breaker wraps a Store with a circuit breaker. While the circuit is open
// every call fails fast with ErrCacheUnavailable, so callers fall back to
// recomputation without waiting on a sick backend.
type Breaker struct {
	next   Store
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
	logger zerolog.Logger
}

// NewBreaker wraps next. name labels metrics and logs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(next Store, name string, s BreakerSettings, logger zerolog.Logger) *Breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	cbName := "result_cache_" + name

	log := logger.With().Str("component", "cache_breaker").Str("breaker", cbName).Logger()
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Breaker{next: next, cb: cb, name: cbName, logger: log}
}

// State returns the current breaker state name: closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Unwrap returns the wrapped backend.
func (b *Breaker) Unwrap() Store {
	return b.next
}

type getResult struct {
	data []byte
	ok   bool
}

// Get reads through the breaker.
func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.execute(func() (interface{}, error) {
		data, ok, err := b.next.Get(ctx, key)
		return getResult{data: data, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r, _ := res.(getResult)
	return r.data, r.ok, nil
}

// Set writes through the breaker.
func (b *Breaker) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete removes key through the breaker.
func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// DeletePrefix removes keys under prefix through the breaker.
func (b *Breaker) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.next.DeletePrefix(ctx, prefix)
	})
	if err != nil {
		return 0, err
	}
	n, _ := res.(int)
	return n, nil
}

// Close closes the wrapped store.
func (b *Breaker) Close() error {
	return b.next.Close()
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return res, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCacheUnavailable, err.Error())
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	return nil, err
}

// stateValue maps a state to the circuit_breaker_state gauge value.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
