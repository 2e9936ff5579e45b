// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Warmer precomputes related-posts lists. Satisfied by *recommend.Engine.
type Warmer interface {
	WarmPopular(ctx context.Context, limit int) (int, error)
}

// WarmServiceConfig holds configuration for the warm service.
type WarmServiceConfig struct {
	// OnStartup warms once as soon as the service starts.
	OnStartup bool

	// Interval between warming passes. Default: 30m.
	Interval time.Duration

	// Limit is the number of popular posts per pass. Zero uses the
	// engine's default.
	Limit int

	// Timeout bounds a single pass. Default: 5m.
	Timeout time.Duration
}

// WarmService periodically warms the related-posts cache for popular posts.
// Pacing between posts is the engine's warm limiter.
type WarmService struct {
	warmer Warmer
	config WarmServiceConfig
	logger zerolog.Logger
	name   string
}

// NewWarmService creates a new warm service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmService(warmer Warmer, cfg WarmServiceConfig, logger zerolog.Logger) *WarmService {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &WarmService{
		warmer: warmer,
		config: cfg,
		logger: logger.With().Str("service", "warm").Logger(),
		name:   "warm-service",
	}
}

// Serve implements suture.Service. A failed pass is logged and retried on
// the next tick rather than restarting the service.
func (s *WarmService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Int("limit", s.config.Limit).
		Msg("cache warm service starting")

	if s.config.OnStartup {
		s.warm(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache warm service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *WarmService) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	warmed, err := s.warmer.WarmPopular(warmCtx, s.config.Limit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Int("warmed", warmed).Msg("cache warm pass failed")
		return
	}
	s.logger.Debug().Int("warmed", warmed).Msg("cache warm pass complete")
}

// String returns the service name for logging.
func (s *WarmService) String() string {
	return s.name
}
