// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current PostEvent schema version.
const SchemaVersion = 1

// EventType identifies what changed.
type EventType string

const (
	// TypePostUpdated is published when a post is created, edited or
	// published.
	TypePostUpdated EventType = "post.updated"
	// TypePostUnpublished is published when a published post becomes a
	// draft. Other posts' cached lists may still include it.
	TypePostUnpublished EventType = "post.unpublished"
	// TypePostDeleted is published when a post is removed.
	TypePostDeleted EventType = "post.deleted"
	// TypeTaxonomyUpdated is published when tags or categories are renamed
	// or merged across posts.
	TypeTaxonomyUpdated EventType = "taxonomy.updated"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case TypePostUpdated, TypePostUnpublished, TypePostDeleted, TypeTaxonomyUpdated:
		return true
	default:
		return false
	}
}

// ErrInvalidEvent is returned for events that fail validation.
var ErrInvalidEvent = errors.New("invalid post event")

// PostEvent is the message exchanged between writers and the cache
// invalidation handler.
type PostEvent struct {
	SchemaVersion int       `json:"schema_version,omitempty"`
	EventID       string    `json:"event_id"`
	Type          EventType `json:"type"`
	PostID        int64     `json:"post_id,omitempty"` // zero for taxonomy events
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source,omitempty"` // cli, server, ...
}

// NewPostEvent creates an event with a fresh id and the current time.
func NewPostEvent(eventType EventType, postID int64, source string) *PostEvent {
	return &PostEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Type:          eventType,
		PostID:        postID,
		Timestamp:     time.Now().UTC(),
		Source:        source,
	}
}

// Validate checks required fields.
func (e *PostEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case !e.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	case e.Type != TypeTaxonomyUpdated && e.PostID <= 0:
		return fmt.Errorf("%w: %s requires a positive post_id, got %d", ErrInvalidEvent, e.Type, e.PostID)
	}
	return nil
}

// Marshal validates and encodes an event.
func Marshal(event *PostEvent) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.SchemaVersion == 0 {
		event.SchemaVersion = SchemaVersion
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event. Events from older writers
// without a schema version are treated as version 1.
func Unmarshal(data []byte) (*PostEvent, error) {
	var event PostEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if event.SchemaVersion == 0 {
		event.SchemaVersion = SchemaVersion
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}
