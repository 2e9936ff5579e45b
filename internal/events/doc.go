// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

/*
Package events carries post mutation events to the related-posts cache.

Writers (the CLI import, publish and delete commands, or any host process)
publish a PostEvent whenever a post or the shared taxonomy changes. A
Watermill router subscribed to the same topic turns each event into a
cache invalidation on the recommend.Engine:

	post.updated      -> Engine.Invalidate(post_id)
	post.unpublished  -> Engine.InvalidateAll()
	post.deleted      -> Engine.InvalidateAll()
	taxonomy.updated  -> Engine.InvalidateAll()

An unpublished or deleted post can sit in any other post's cached list,
so both drop everything rather than just the post's own keys.

# Transports

Two transports are supported, selected by events.transport:

  - channel: Watermill's in-process gochannel Pub/Sub. Publisher and
    subscriber must live in the same process. Used by tests and by
    single-binary deployments.
  - nats: core NATS through watermill-nats (JetStream disabled). Delivery
    is at-most-once; a missed invalidation is bounded by the cache TTL.
    An embedded nats-server can be started in-process for deployments
    without an external broker.

# Message Format

Payloads are JSON encoded with goccy/go-json:

	{"schema_version":1,"event_id":"...","type":"post.updated",
	 "post_id":42,"timestamp":"2026-06-15T12:00:00Z","source":"cli"}

Malformed payloads are logged and acknowledged so they are never
redelivered. Invalidation failures are returned to the router, whose
retry middleware redelivers them a bounded number of times.

# Thread Safety

Publisher, Handler and Router are safe for concurrent use.
*/
package events
