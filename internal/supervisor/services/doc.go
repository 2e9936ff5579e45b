// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package services provides suture.Service wrappers for the devblog server.

Each wrapper turns a component's lifecycle into suture's
Serve(ctx) error pattern and identifies itself through fmt.Stringer:

  - HTTPServerService: ops listener (/metrics, /healthz), graceful shutdown
  - WarmService: warms the related-posts cache for popular posts on a ticker
  - EventService: runs the Watermill router that turns post events into
    cache invalidations, building a fresh router on every restart

Returning ctx.Err() means a clean stop. Any other error makes the parent
supervisor restart the service with backoff.
*/
package services
