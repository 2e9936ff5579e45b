// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package middleware provides the chi-compatible HTTP middleware used by the
ops endpoints.

Key Components:

  - RequestID: propagates or generates X-Request-ID and uses it as the
    logging correlation id
  - PrometheusMetrics: request counts, latency and in-flight gauge labeled
    by chi route pattern
  - RateLimit: per-client request limiting via go-chi/httprate

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.RateLimit(120, time.Minute))

Thread Safety:

All middleware is safe for concurrent use.
*/
package middleware
