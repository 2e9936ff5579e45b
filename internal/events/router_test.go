// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/config"
)

const testTopic = "test.posts"

// startRouter runs a router over an in-process transport and returns a
// publisher on the same transport.
func startRouter(t *testing.T, inv Invalidator, cfg RouterConfig) (*Publisher, *Transport) {
	t.Helper()

	transport := NewChannelTransport(zerolog.Nop())
	t.Cleanup(func() { _ = transport.Close() })

	handler, err := NewHandler(inv, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	router, err := NewRouter(cfg, transport.Subscriber, transport.Publisher, handler, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = router.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	pub, err := NewPublisher(transport.Publisher, cfg.Topic, "test", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return pub, transport
}

func waitCall(t *testing.T, inv *fakeInvalidator) {
	t.Helper()
	select {
	case <-inv.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for invalidation")
	}
}

func testRouterConfig() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.Topic = testTopic
	cfg.CloseTimeout = time.Second
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	return cfg
}

func TestRouter_DeliversEvents(t *testing.T) {
	inv := newFakeInvalidator()
	pub, _ := startRouter(t, inv, testRouterConfig())
	ctx := context.Background()

	if err := pub.PostUpdated(ctx, 11); err != nil {
		t.Fatalf("PostUpdated() error = %v", err)
	}
	waitCall(t, inv)

	if err := pub.TaxonomyUpdated(ctx); err != nil {
		t.Fatalf("TaxonomyUpdated() error = %v", err)
	}
	waitCall(t, inv)

	posts, all := inv.snapshot()
	if len(posts) != 1 || posts[0] != 11 || all != 1 {
		t.Errorf("posts = %v all = %d, want [11] and 1", posts, all)
	}
}

func TestRouter_PoisonQueueAfterRetries(t *testing.T) {
	inv := newFakeInvalidator()
	inv.err = errors.New("cache down")
	cfg := testRouterConfig()
	cfg.RetryMaxRetries = 2
	pub, transport := startRouter(t, inv, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poisoned, err := transport.Subscriber.Subscribe(ctx, testTopic+".dlq")
	if err != nil {
		t.Fatalf("Subscribe(dlq) error = %v", err)
	}

	if err := pub.PostUpdated(context.Background(), 5); err != nil {
		t.Fatalf("PostUpdated() error = %v", err)
	}

	select {
	case msg := <-poisoned:
		msg.Ack()
		event, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatalf("poisoned payload: %v", err)
		}
		if event.PostID != 5 {
			t.Errorf("poisoned PostID = %d, want 5", event.PostID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event never reached the poison queue")
	}

	posts, _ := inv.snapshot()
	if len(posts) != cfg.RetryMaxRetries+1 {
		t.Errorf("Invalidate attempts = %d, want %d", len(posts), cfg.RetryMaxRetries+1)
	}
}

func TestNewRouter_Validation(t *testing.T) {
	transport := NewChannelTransport(zerolog.Nop())
	defer transport.Close()
	handler, _ := NewHandler(newFakeInvalidator(), zerolog.Nop())

	if _, err := NewRouter(testRouterConfig(), nil, transport.Publisher, handler, zerolog.Nop()); err == nil {
		t.Error("nil subscriber accepted")
	}
	if _, err := NewRouter(testRouterConfig(), transport.Subscriber, transport.Publisher, nil, zerolog.Nop()); err == nil {
		t.Error("nil handler accepted")
	}
	cfg := testRouterConfig()
	cfg.Topic = ""
	if _, err := NewRouter(cfg, transport.Subscriber, transport.Publisher, handler, zerolog.Nop()); err == nil {
		t.Error("empty topic accepted")
	}
}

func TestRouterConfigFrom(t *testing.T) {
	rc := RouterConfigFrom(&config.EventsConfig{
		Topic:         "blog.posts",
		RetryCount:    7,
		RetryInterval: 250 * time.Millisecond,
	})
	if rc.Topic != "blog.posts" || rc.RetryMaxRetries != 7 || rc.RetryInitialInterval != 250*time.Millisecond {
		t.Errorf("RouterConfigFrom() = %+v", rc)
	}
	if rc.CloseTimeout != DefaultRouterConfig().CloseTimeout {
		t.Errorf("CloseTimeout = %v, want default", rc.CloseTimeout)
	}
	if rc.poisonTopic() != "blog.posts.dlq" {
		t.Errorf("poisonTopic() = %q", rc.poisonTopic())
	}
}

func TestPublisher(t *testing.T) {
	transport := NewChannelTransport(zerolog.Nop())
	defer transport.Close()

	if _, err := NewPublisher(nil, testTopic, "test", zerolog.Nop()); err == nil {
		t.Error("nil publisher accepted")
	}
	if _, err := NewPublisher(transport.Publisher, "", "test", zerolog.Nop()); err == nil {
		t.Error("empty topic accepted")
	}

	pub, err := NewPublisher(transport.Publisher, testTopic, "test", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := pub.Publish(context.Background(), &PostEvent{EventID: "x", Type: TypePostUpdated}); err == nil {
		t.Error("invalid event published")
	}

	_ = pub.Close()
	if err := pub.PostUpdated(context.Background(), 1); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("publish after Close error = %v", err)
	}
}

func TestNATSTransport_EmbeddedServer(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}

	transport, err := NewTransport(&config.EventsConfig{
		Transport:      TransportNATS,
		EmbeddedServer: true,
		Topic:          testTopic,
		QueueGroup:     "related-posts",
		CloseTimeout:   time.Second,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}

	srv := transport.Server()
	if srv == nil || !srv.IsRunning() {
		t.Fatal("embedded server not running")
	}
	if !strings.HasPrefix(srv.ClientURL(), "nats://") {
		t.Errorf("ClientURL() = %q", srv.ClientURL())
	}
	if transport.Name() != TransportNATS {
		t.Errorf("Name() = %q", transport.Name())
	}

	if err := transport.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if transport.Server() != nil {
		t.Error("server not released after Close")
	}
}

func TestNewTransport_Unknown(t *testing.T) {
	if _, err := NewTransport(&config.EventsConfig{Transport: "kafka"}, zerolog.Nop()); err == nil {
		t.Error("unknown transport accepted")
	}
}
