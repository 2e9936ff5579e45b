// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/config"
)

// HandlerName is the router handler that applies invalidations.
const HandlerName = "invalidate_related_posts"

// RouterConfig holds configuration for the invalidation router.
type RouterConfig struct {
	Topic string
	// PoisonTopic receives events that still fail after all retries.
	// Empty means Topic + ".dlq".
	PoisonTopic string

	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Topic:                "blog.posts",
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// RouterConfigFrom maps the events section of the application config.
func RouterConfigFrom(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.Topic = cfg.Topic
	rc.RetryMaxRetries = cfg.RetryCount
	if cfg.RetryInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInterval
	}
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	return rc
}

func (c RouterConfig) poisonTopic() string {
	if c.PoisonTopic != "" {
		return c.PoisonTopic
	}
	return c.Topic + ".dlq"
}

// Router runs the invalidation handler on a Watermill router with poison
// queue, retry and panic recovery middleware (outer to inner).
type Router struct {
	router *message.Router
	config RouterConfig
}

// NewRouter wires handler to sub. Messages that exhaust their retries are
// published to the poison topic on pub and acknowledged.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg RouterConfig, sub message.Subscriber, pub message.Publisher, handler *Handler, logger zerolog.Logger) (*Router, error) {
	if sub == nil || pub == nil {
		return nil, fmt.Errorf("subscriber and publisher are required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	wmLogger := NewLoggerAdapter(logger.With().Str("component", "event-router").Logger())

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(pub, cfg.poisonTopic())
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}

	wmRouter.AddMiddleware(
		poisonQueue,
		middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      cfg.RetryMultiplier,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	wmRouter.AddConsumerHandler(HandlerName, cfg.Topic, sub, handler.Handle)

	return &Router{router: wmRouter, config: cfg}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight events.
func (r *Router) Close() error {
	return r.router.Close()
}

// Topic returns the subscribed topic.
func (r *Router) Topic() string {
	return r.config.Topic
}

// PoisonTopic returns where failed events are sent.
func (r *Router) PoisonTopic() string {
	return r.config.poisonTopic()
}
