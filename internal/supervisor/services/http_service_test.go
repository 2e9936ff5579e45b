// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeHTTPServer holds the listener until Shutdown, or fails at once when
// serveErr is set.
type fakeHTTPServer struct {
	serveErr    error
	shutdownErr error
	serves      atomic.Int32
	shutdowns   atomic.Int32
	started     chan struct{}
	stop        chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) Serve(ln net.Listener) error {
	defer ln.Close()
	f.serves.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

func newTestHTTPService(server HTTPServer) *HTTPServerService {
	return NewHTTPServerService(server, "127.0.0.1:0", time.Second, zerolog.Nop())
}

func serveUntilStarted(t *testing.T, svc *HTTPServerService, started <-chan struct{}) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-started:
	case <-time.After(time.Second):
		cancel()
		t.Fatal("server did not start")
	}
	return cancel, errCh
}

func TestNewHTTPServerService_Defaults(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{5 * time.Second, 5 * time.Second},
		{0, defaultShutdownTimeout},
		{-time.Second, defaultShutdownTimeout},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService(newFakeHTTPServer(), ":9090", tt.in, zerolog.Nop())
		if svc.shutdownTimeout != tt.want {
			t.Errorf("NewHTTPServerService(%v).shutdownTimeout = %v, want %v", tt.in, svc.shutdownTimeout, tt.want)
		}
	}

	svc := NewHTTPServerService(newFakeHTTPServer(), "", 0, zerolog.Nop())
	if svc.addr != "127.0.0.1:0" {
		t.Errorf("addr = %q, want an ephemeral loopback port", svc.addr)
	}
	if svc.String() != "ops-http" {
		t.Errorf("String() = %q, want ops-http", svc.String())
	}
	if svc.Addr() != "" {
		t.Errorf("Addr() before Serve = %q, want empty", svc.Addr())
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newFakeHTTPServer()
	svc := newTestHTTPService(server)
	cancel, errCh := serveUntilStarted(t, svc, server.started)

	if svc.Addr() == "" || svc.Addr() == "127.0.0.1:0" {
		t.Errorf("Addr() while serving = %q, want the bound port", svc.Addr())
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if server.serves.Load() != 1 || server.shutdowns.Load() != 1 {
		t.Errorf("serves=%d shutdowns=%d, want 1 and 1", server.serves.Load(), server.shutdowns.Load())
	}
	if svc.Addr() != "" {
		t.Errorf("Addr() after stop = %q, want empty", svc.Addr())
	}
}

func TestHTTPServerService_AddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer taken.Close()

	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, taken.Addr().String(), time.Second, zerolog.Nop())
	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("Serve() on a taken port error = nil")
	}
	if server.serves.Load() != 0 {
		t.Errorf("server.Serve called %d times without a listener", server.serves.Load())
	}
}

func TestHTTPServerService_ServeFailure(t *testing.T) {
	server := newFakeHTTPServer()
	server.serveErr = errors.New("accept: too many open files")

	err := newTestHTTPService(server).Serve(context.Background())
	if !errors.Is(err, server.serveErr) {
		t.Errorf("Serve() error = %v, want wrapped %v", err, server.serveErr)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	server := newFakeHTTPServer()
	server.shutdownErr = errors.New("connections still open")
	cancel, errCh := serveUntilStarted(t, newTestHTTPService(server), server.started)
	cancel()

	if err := <-errCh; !errors.Is(err, server.shutdownErr) {
		t.Errorf("Serve() error = %v, want wrapped %v", err, server.shutdownErr)
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := newTestHTTPService(srv)

	sup := suture.New("test", suture.Spec{Timeout: 2 * time.Second})
	sup.Add(svc)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	defer func() {
		cancel()
		<-errCh
	}()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.Addr() == "" {
		t.Fatal("listener was not bound")
	}

	resp, err := http.Get("http://" + svc.Addr() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
