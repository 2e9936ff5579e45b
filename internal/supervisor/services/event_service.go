// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package services

import (
	"context"
	"fmt"
)

// EventRouter is a runnable message router. Satisfied by *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A Watermill router cannot be run
// twice, so every restart needs a new one.
type RouterFactory func() (EventRouter, error)

// EventService runs the post event router that invalidates the
// related-posts cache.
type EventService struct {
	newRouter RouterFactory
	name      string
}

// NewEventService creates a new event service.
func NewEventService(newRouter RouterFactory) *EventService {
	return &EventService{
		newRouter: newRouter,
		name:      "event-router",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on shutdown and
// an error when the router stops on its own, which triggers a restart.
func (s *EventService) Serve(ctx context.Context) error {
	router, err := s.newRouter()
	if err != nil {
		return fmt.Errorf("create event router: %w", err)
	}

	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Stopped without cancellation; release it before suture restarts us.
	_ = router.Close()
	if err != nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	return fmt.Errorf("event router stopped unexpectedly")
}

// String returns the service name for logging.
func (s *EventService) String() string {
	return s.name
}
