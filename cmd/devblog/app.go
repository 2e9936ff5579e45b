// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/devblog/internal/cache"
	"github.com/tomtom215/devblog/internal/config"
	"github.com/tomtom215/devblog/internal/database"
	"github.com/tomtom215/devblog/internal/logging"
	"github.com/tomtom215/devblog/internal/metrics"
	"github.com/tomtom215/devblog/internal/recommend"
	"github.com/tomtom215/devblog/internal/recommend/algorithms"
	"github.com/tomtom215/devblog/internal/recommend/reranking"
)

// app holds the components shared by every command.
type app struct {
	cfg    *config.Config
	db     *database.DB
	store  cache.Store
	engine *recommend.Engine
	logger zerolog.Logger
}

// loadConfig loads the layered configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// setupLogging points the global logger at the configured level and format.
func setupLogging(cfg *config.LoggingConfig) zerolog.Logger {
	logging.Init(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Caller:    cfg.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	return logging.Logger()
}

// engineConfig maps the recommend and warm sections onto the engine's
// configuration. Unmapped settings keep the engine defaults.
func engineConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.Cache.TTL = cfg.Recommend.CacheTTL
	rc.Cache.AlgorithmVersion = cfg.Recommend.AlgorithmVersion
	rc.Debug = cfg.Recommend.Debug
	rc.Limits.DefaultCount = cfg.Recommend.DefaultCount
	rc.Limits.CategoryCount = cfg.Recommend.CategoryCount
	rc.Limits.AuthorCount = cfg.Recommend.AuthorCount
	rc.Limits.OversampleFactor = cfg.Recommend.OversampleFactor
	rc.Limits.WarmPopular = cfg.Warm.PopularLimit
	rc.Diversity.Enabled = cfg.Recommend.DiversityEnabled
	rc.Diversity.Lambda = cfg.Recommend.DiversityLambda
	return rc
}

// cacheOptions maps the cache section onto cache.Open options.
func cacheOptions(cfg *config.CacheConfig) cache.Options {
	return cache.Options{
		Backend:         cache.Backend(cfg.Backend),
		BadgerDir:       cfg.BadgerDir,
		CleanupInterval: cfg.CleanupInterval,
		Breaker: cache.BreakerSettings{
			Enabled:          cfg.Breaker.Enabled,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
		},
	}
}

// newApp opens the database and, unless withCache is false, the result
// cache, then builds the engine over them.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newApp(cfg *config.Config, logger zerolog.Logger, withCache bool) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{cfg: cfg, db: db, logger: logger}

	var engineCache recommend.Cache
	if withCache {
		store, err := cache.Open(cacheOptions(&cfg.Cache), logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to open result cache: %w", err)
		}
		a.store = store
		engineCache = store
	}

	engine, err := recommend.NewEngine(engineConfig(cfg), db, engineCache, algorithms.NewWeightedSimilarity(), logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create related posts engine: %w", err)
	}

	if cfg.Recommend.DiversityEnabled {
		engine.SetReranker(reranking.NewMMR(cfg.Recommend.DiversityLambda))
	}
	engine.SetObserver(metrics.RelatedObserver{Backend: cfg.Cache.Backend})
	engine.SetWarmLimiter(rate.NewLimiter(rate.Limit(cfg.Warm.RatePerSecond), 1))

	a.engine = engine
	return a, nil
}

// cacheState returns the breaker state reporter for the ops health check,
// or nil when the cache has no breaker.
func (a *app) cacheState() func() string {
	if b, ok := a.store.(*cache.Breaker); ok {
		return b.State
	}
	return nil
}

// post loads a post by its id argument.
func (a *app) post(ctx context.Context, arg string) (*recommend.Post, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return a.db.GetPost(ctx, id)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close result cache")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// parseID parses a positive post id.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

// setup is the common preamble of the one-shot commands.
func setup(withCache bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogging(&cfg.Logging)
	return newApp(cfg, logger, withCache)
}
