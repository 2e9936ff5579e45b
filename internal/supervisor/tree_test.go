// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// countingService starts, optionally fails a few times, then blocks until
// cancelled.
type countingService struct {
	name     string
	starts   atomic.Int32
	failures int32
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("applies defaults for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree() error = %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("Root() = nil")
		}
		if got := tree.Config(); got != DefaultTreeConfig() {
			t.Errorf("Config() = %+v, want %+v", got, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
		if tree.Config().FailureBackoff != time.Second {
			t.Errorf("FailureBackoff = %v, want 1s", tree.Config().FailureBackoff)
		}
		if tree.Config().FailureThreshold != 5 {
			t.Errorf("FailureThreshold = %v, want 5", tree.Config().FailureThreshold)
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		if _, err := NewSupervisorTree(nil, TreeConfig{}); err != nil {
			t.Errorf("NewSupervisorTree(nil) error = %v", err)
		}
	})
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := &countingService{name: "warm"}
	messaging := &countingService{name: "events"}
	api := &countingService{name: "http"}
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if data.starts.Load() > 0 && messaging.starts.Load() > 0 && api.starts.Load() > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}

	for _, s := range []*countingService{data, messaging, api} {
		if s.starts.Load() < 1 {
			t.Errorf("%s was not started", s.name)
		}
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &countingService{name: "flaky", failures: 2}
	stable := &countingService{name: "stable"}
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && failing.starts.Load() < 3 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if got := failing.starts.Load(); got < 3 {
		t.Errorf("flaky starts = %d, want at least 3", got)
	}
	if stable.starts.Load() != 1 {
		t.Errorf("stable starts = %d, want 1", stable.starts.Load())
	}
}
