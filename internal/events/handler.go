// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/metrics"
)

// Invalidator is the part of recommend.Engine the handler drives.
type Invalidator interface {
	Invalidate(ctx context.Context, postID int64) (int, error)
	InvalidateAll(ctx context.Context) (int, error)
}

// Handler result labels.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

const defaultHandleTimeout = 10 * time.Second

// Handler turns post events into cache invalidations.
type Handler struct {
	invalidator Invalidator
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewHandler creates a handler for inv.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(inv Invalidator, logger zerolog.Logger) (*Handler, error) {
	if inv == nil {
		return nil, fmt.Errorf("invalidator is required")
	}
	return &Handler{
		invalidator: inv,
		timeout:     defaultHandleTimeout,
		logger:      logger.With().Str("component", "event-handler").Logger(),
	}, nil
}

// Handle implements message.NoPublishHandlerFunc. Malformed events are
// logged and acknowledged; invalidation errors are returned for retry.
func (h *Handler) Handle(msg *message.Message) error {
	event, err := Unmarshal(msg.Payload)
	if err != nil {
		metrics.EventsHandled.WithLabelValues("unknown", ResultInvalid).Inc()
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed post event")
		return nil
	}

	ctx, cancel := context.WithTimeout(msg.Context(), h.timeout)
	defer cancel()

	removed, err := h.apply(ctx, event)
	if err != nil {
		metrics.EventsHandled.WithLabelValues(string(event.Type), ResultError).Inc()
		return fmt.Errorf("handle %s for post %d: %w", event.Type, event.PostID, err)
	}

	metrics.EventsHandled.WithLabelValues(string(event.Type), ResultOK).Inc()
	h.logger.Debug().
		Str("type", string(event.Type)).
		Int64("post_id", event.PostID).
		Int("removed", removed).
		Msg("Applied post event")
	return nil
}

func (h *Handler) apply(ctx context.Context, event *PostEvent) (int, error) {
	switch event.Type {
	case TypePostUpdated:
		return h.invalidator.Invalidate(ctx, event.PostID)
	case TypePostUnpublished, TypePostDeleted, TypeTaxonomyUpdated:
		return h.invalidator.InvalidateAll(ctx)
	default:
		return 0, errors.New("unhandled event type")
	}
}
