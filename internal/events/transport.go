// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/config"
)

// Transport names accepted by events.transport.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// Transport bundles the Watermill publisher and subscriber for one
// transport, plus the embedded NATS server when one was started.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	name   string
	server *EmbeddedServer
	logger zerolog.Logger
}

// NewTransport builds the transport selected by cfg.Transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTransport(cfg *config.EventsConfig, logger zerolog.Logger) (*Transport, error) {
	switch cfg.Transport {
	case TransportChannel, "":
		return NewChannelTransport(logger), nil
	case TransportNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Transport)
	}
}

// NewChannelTransport returns an in-process gochannel transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewChannelTransport(logger zerolog.Logger) *Transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewLoggerAdapter(logger.With().Str("component", "gochannel").Logger()))

	return &Transport{
		Publisher:  pubSub,
		Subscriber: pubSub,
		name:       TransportChannel,
		logger:     logger,
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newNATSTransport(cfg *config.EventsConfig, logger zerolog.Logger) (*Transport, error) {
	t := &Transport{name: TransportNATS, logger: logger}

	url := cfg.URL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg.EmbeddedPort, logger)
		if err != nil {
			return nil, err
		}
		t.server = srv
		url = srv.ClientURL()
	}

	wmLogger := NewLoggerAdapter(logger.With().Str("component", "nats").Logger())
	natsOpts := []natsgo.Option{
		natsgo.Name("devblog"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		t.shutdownServer()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	t.Publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		t.shutdownServer()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	t.Subscriber = sub

	return t, nil
}

// Name returns the transport name.
func (t *Transport) Name() string {
	return t.name
}

// Server returns the embedded NATS server, or nil.
func (t *Transport) Server() *EmbeddedServer {
	return t.server
}

// Close closes the publisher and subscriber, then stops any embedded
// server.
func (t *Transport) Close() error {
	var errs []error
	if t.Subscriber != nil {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	// gochannel uses one value for both sides.
	if t.Publisher != nil && t.name != TransportChannel {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	t.shutdownServer()
	return errors.Join(errs...)
}

func (t *Transport) shutdownServer() {
	if t.server != nil {
		t.server.Shutdown()
		t.server = nil
	}
}
