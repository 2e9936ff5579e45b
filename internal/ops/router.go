// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

// Package ops serves the operational HTTP endpoints of `devblog serve`:
// Prometheus metrics, liveness and readiness probes, and engine counters.
// It exposes no related-posts API.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/middleware"
	"github.com/tomtom215/devblog/internal/recommend"
)

// Pinger checks repository connectivity. Satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource reports engine counters. Satisfied by *recommend.Engine.
type StatsSource interface {
	Stats() recommend.Stats
}

// Options are the dependencies of the ops router. Nil fields disable the
// checks that need them.
type Options struct {
	DB     Pinger
	Engine StatsSource
	// CacheState reports the cache circuit breaker state ("closed",
	// "half-open", "open").
	CacheState func() string
	// PingTimeout bounds the readiness database ping. Default: 2s.
	PingTimeout time.Duration
	// RateLimit is the per-client request budget per minute. Zero disables
	// limiting.
	RateLimit int
	Logger    zerolog.Logger
}

// HealthStatus is the /healthz response body.
type HealthStatus struct {
	Status   string    `json:"status"` // healthy, degraded
	Database string    `json:"database"`
	Cache    string    `json:"cache,omitempty"`
	Uptime   float64   `json:"uptime_seconds"`
	Time     time.Time `json:"timestamp"`
}

type handler struct {
	opts    Options
	started time.Time
	logger  zerolog.Logger
}

// NewRouter builds the ops handler:
//
//	GET /metrics  Prometheus exposition
//	GET /livez    process is up
//	GET /healthz  database ping and cache breaker state, 503 when degraded
//	GET /stats    engine counters
func NewRouter(opts Options) http.Handler {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 2 * time.Second
	}
	h := &handler{
		opts:    opts,
		started: time.Now(),
		logger:  opts.Logger.With().Str("component", "ops-http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/livez", h.live)
	r.Get("/healthz", h.health)
	r.Get("/stats", h.stats)
	return r
}

// NewServer returns an http.Server for handler with conservative timeouts.
func NewServer(addr string, handler http.Handler, timeout time.Duration) *http.Server {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       4 * timeout,
	}
}

func (h *handler) live(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"alive":          true,
		"uptime_seconds": time.Since(h.started).Seconds(),
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:   "healthy",
		Database: "unconfigured",
		Uptime:   time.Since(h.started).Seconds(),
		Time:     time.Now().UTC(),
	}

	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.opts.PingTimeout)
		err := h.opts.DB.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.Warn().Err(err).Msg("health check: database ping failed")
			status.Status = "degraded"
			status.Database = "unreachable"
		} else {
			status.Database = "ok"
		}
	}

	if h.opts.CacheState != nil {
		status.Cache = h.opts.CacheState()
		// An open breaker degrades to uncached computation, not an outage.
		if status.Cache == "open" && status.Status == "healthy" {
			status.Status = "degraded"
		}
	}

	code := http.StatusOK
	if status.Database == "unreachable" {
		code = http.StatusServiceUnavailable
	}
	h.respondJSON(w, code, status)
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	if h.opts.Engine == nil {
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": "engine not configured"})
		return
	}
	h.respondJSON(w, http.StatusOK, h.opts.Engine.Stats())
}

func (h *handler) respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Debug().Err(err).Msg("failed to write response")
	}
}
