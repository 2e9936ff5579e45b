// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/devblog/internal/cache"
	"github.com/tomtom215/devblog/internal/config"
	"github.com/tomtom215/devblog/internal/events"
	"github.com/tomtom215/devblog/internal/logging"
	"github.com/tomtom215/devblog/internal/ops"
	"github.com/tomtom215/devblog/internal/supervisor"
	"github.com/tomtom215/devblog/internal/supervisor/services"
)

// badgerGCInterval is how often the badger value log is compacted.
const badgerGCInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the related posts engine services",
	Long: `Runs the long-lived services under a supervisor tree:

  data       periodic cache warming for popular posts (warm.enabled)
  messaging  post event router invalidating cached lists (events.enabled)
  api        ops endpoints /metrics, /livez, /healthz, /stats (server.enabled)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(&cfg.Logging)

	logger.Info().
		Str("database", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Str("algorithm_version", cfg.Recommend.AlgorithmVersion).
		Msg("Starting devblog related posts engine")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.close()

	if cache.StartMaintenance(ctx, a.store, badgerGCInterval) {
		logger.Info().Dur("interval", badgerGCInterval).Msg("Badger value log GC started")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	if cfg.Warm.Enabled {
		tree.AddDataService(services.NewWarmService(a.engine, services.WarmServiceConfig{
			OnStartup: cfg.Warm.OnStartup,
			Interval:  cfg.Warm.Interval,
			Limit:     cfg.Warm.PopularLimit,
		}, logger))
		logger.Info().Dur("interval", cfg.Warm.Interval).Msg("Cache warming enabled")
	}

	if cfg.Events.Enabled {
		transport, err := addEventService(tree, a, &cfg.Events, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := transport.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close events transport")
			}
		}()
	}

	if cfg.Server.Enabled {
		handler := ops.NewRouter(ops.Options{
			DB:         a.db,
			Engine:     a.engine,
			CacheState: a.cacheState(),
			RateLimit:  cfg.Server.RateLimit,
			Logger:     logger,
		})
		server := ops.NewServer(cfg.Server.Addr, handler, cfg.Server.Timeout)
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr, cfg.Server.Timeout, logger))
	}

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree stopped: %w", err)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	logger.Info().Msg("Shutdown complete")
	return nil
}

// addEventService connects the events transport and registers the router
// that turns post events into cache invalidations. The caller closes the
// returned transport after the tree has stopped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func addEventService(tree *supervisor.SupervisorTree, a *app, cfg *config.EventsConfig, logger zerolog.Logger) (*events.Transport, error) {
	transport, err := events.NewTransport(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events transport: %w", err)
	}

	handler, err := events.NewHandler(a.engine, logger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	routerCfg := events.RouterConfigFrom(cfg)
	tree.AddMessagingService(services.NewEventService(func() (services.EventRouter, error) {
		router, err := events.NewRouter(routerCfg, transport.Subscriber, transport.Publisher, handler, logger)
		if err != nil {
			return nil, err
		}
		return router, nil
	}))

	logger.Info().
		Str("transport", transport.Name()).
		Str("topic", routerCfg.Topic).
		Msg("Post event router enabled")
	return transport, nil
}
