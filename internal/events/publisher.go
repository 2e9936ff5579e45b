// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/logging"
	"github.com/tomtom215/devblog/internal/metrics"
)

// Publisher sends PostEvents to a topic.
type Publisher struct {
	publisher message.Publisher
	topic     string
	source    string
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a Watermill publisher. source is recorded on every
// event (for example "cli").
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, topic, source string, logger zerolog.Logger) (*Publisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	return &Publisher{
		publisher: pub,
		topic:     topic,
		source:    source,
		logger:    logger.With().Str("component", "event-publisher").Logger(),
	}, nil
}

// Publish validates, encodes and sends an event.
func (p *Publisher) Publish(ctx context.Context, event *PostEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	if event.Source == "" {
		event.Source = p.source
	}
	data, err := Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("type", string(event.Type))
	msg.Metadata.Set("post_id", strconv.FormatInt(event.PostID, 10))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	p.logger.Debug().
		Str("type", string(event.Type)).
		Int64("post_id", event.PostID).
		Str("event_id", event.EventID).
		Msg("Published post event")
	return nil
}

// PostUpdated publishes a post.updated event.
func (p *Publisher) PostUpdated(ctx context.Context, postID int64) error {
	return p.Publish(ctx, NewPostEvent(TypePostUpdated, postID, p.source))
}

// PostUnpublished publishes a post.unpublished event.
func (p *Publisher) PostUnpublished(ctx context.Context, postID int64) error {
	return p.Publish(ctx, NewPostEvent(TypePostUnpublished, postID, p.source))
}

// PostDeleted publishes a post.deleted event.
func (p *Publisher) PostDeleted(ctx context.Context, postID int64) error {
	return p.Publish(ctx, NewPostEvent(TypePostDeleted, postID, p.source))
}

// TaxonomyUpdated publishes a taxonomy.updated event.
func (p *Publisher) TaxonomyUpdated(ctx context.Context) error {
	return p.Publish(ctx, NewPostEvent(TypeTaxonomyUpdated, 0, p.source))
}

// Close marks the publisher closed. The underlying Watermill publisher is
// owned by the Transport.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
