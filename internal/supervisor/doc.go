// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package supervisor runs the long-lived parts of `devblog serve` under a
suture v4 supervisor tree.

# Overview

Services are grouped into three layers so one failing layer restarts
without taking the others down:

	RootSupervisor ("devblog")
	├── DataSupervisor ("data-layer")
	│   └── WarmService (periodic popular-post cache warming)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventService (post events -> cache invalidation, if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/metrics and /healthz, if server.enabled)

Supervisor events (start, stop, panic, backoff) are written through
sutureslog to an slog.Logger, which logging.NewSlogLogger backs with the
application's zerolog output.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewWarmService(engine, warmCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, ":9090", 10*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

# See Also

  - internal/supervisor/services: the suture.Service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
