// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/config"
	"github.com/tomtom215/devblog/internal/events"
	"github.com/tomtom215/devblog/internal/logging"
)

const eventSource = "cli"

// changeNotifier tells the related-posts cache about post changes.
type changeNotifier interface {
	PostUpdated(ctx context.Context, postID int64) error
	PostUnpublished(ctx context.Context, postID int64) error
	PostDeleted(ctx context.Context, postID int64) error
	TaxonomyUpdated(ctx context.Context) error
	Close() error
}

// publishesEvents reports whether changes go to a running server over NATS
// rather than straight into the local cache.
func publishesEvents(cfg *config.EventsConfig) bool {
	return cfg.Enabled && cfg.Transport == events.TransportNATS
}

// setupForChanges is setup for commands that modify posts. The cache is
// only opened when changes are applied locally.
func setupForChanges() (*app, changeNotifier, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogging(&cfg.Logging)

	remote := publishesEvents(&cfg.Events)
	a, err := newApp(cfg, logger, !remote)
	if err != nil {
		return nil, nil, err
	}

	var n changeNotifier
	if remote {
		n, err = newEventNotifier(&cfg.Events, logger)
	} else {
		n, err = newLocalNotifier(a)
	}
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return a, n, nil
}

// eventNotifier publishes post events to the configured NATS server.
type eventNotifier struct {
	*events.Publisher
	transport *events.Transport
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEventNotifier(cfg *config.EventsConfig, logger zerolog.Logger) (*eventNotifier, error) {
	// The server owns the embedded NATS server; the CLI only connects.
	clientCfg := *cfg
	clientCfg.EmbeddedServer = false

	transport, err := events.NewTransport(&clientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect events transport: %w", err)
	}
	pub, err := events.NewPublisher(transport.Publisher, cfg.Topic, eventSource, logger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return &eventNotifier{Publisher: pub, transport: transport}, nil
}

func (n *eventNotifier) Close() error {
	return errors.Join(n.Publisher.Close(), n.transport.Close())
}

// localNotifier applies post events to the local engine through the same
// handler the server's event router uses.
type localNotifier struct {
	handler *events.Handler
}

func newLocalNotifier(a *app) (*localNotifier, error) {
	h, err := events.NewHandler(a.engine, a.logger)
	if err != nil {
		return nil, err
	}
	return &localNotifier{handler: h}, nil
}

func (n *localNotifier) PostUpdated(ctx context.Context, postID int64) error {
	return n.apply(ctx, events.NewPostEvent(events.TypePostUpdated, postID, eventSource))
}

func (n *localNotifier) PostUnpublished(ctx context.Context, postID int64) error {
	return n.apply(ctx, events.NewPostEvent(events.TypePostUnpublished, postID, eventSource))
}

func (n *localNotifier) PostDeleted(ctx context.Context, postID int64) error {
	return n.apply(ctx, events.NewPostEvent(events.TypePostDeleted, postID, eventSource))
}

func (n *localNotifier) TaxonomyUpdated(ctx context.Context) error {
	return n.apply(ctx, events.NewPostEvent(events.TypeTaxonomyUpdated, 0, eventSource))
}

func (n *localNotifier) Close() error {
	return nil
}

func (n *localNotifier) apply(ctx context.Context, event *events.PostEvent) error {
	data, err := events.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(event.EventID, data)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	msg.SetContext(ctx)
	return n.handler.Handle(msg)
}
