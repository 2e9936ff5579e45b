// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/devblog/internal/recommend"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeStats struct{ stats recommend.Stats }

func (f fakeStats) Stats() recommend.Stats { return f.stats }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{
			name:       "healthy",
			opts:       Options{DB: fakePinger{}, CacheState: func() string { return "closed" }},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantDB:     "ok",
		},
		{
			name:       "database down",
			opts:       Options{DB: fakePinger{err: errors.New("connection refused")}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantDB:     "unreachable",
		},
		{
			name:       "cache breaker open",
			opts:       Options{DB: fakePinger{}, CacheState: func() string { return "open" }},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantDB:     "ok",
		},
		{
			name:       "no dependencies",
			opts:       Options{},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantDB:     "unconfigured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = zerolog.Nop()
			rec := get(t, NewRouter(tt.opts), "/healthz")

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus || body.Database != tt.wantDB {
				t.Errorf("body = %+v, want status %q database %q", body, tt.wantStatus, tt.wantDB)
			}
		})
	}
}

func TestLiveAndMetrics(t *testing.T) {
	h := NewRouter(Options{Logger: zerolog.Nop()})

	if rec := get(t, h, "/livez"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"alive":true`) {
		t.Errorf("/livez = %d %s", rec.Code, rec.Body.String())
	}

	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("/metrics missing runtime collectors")
	}
}

func TestStats(t *testing.T) {
	h := NewRouter(Options{
		Engine: fakeStats{stats: recommend.Stats{Requests: 10, CacheHits: 7, CacheMisses: 3}},
		Logger: zerolog.Nop(),
	})

	rec := get(t, h, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("/stats status = %d", rec.Code)
	}
	var got recommend.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Requests != 10 || got.CacheHits != 7 || got.CacheMisses != 3 {
		t.Errorf("stats = %+v", got)
	}

	if rec := get(t, NewRouter(Options{Logger: zerolog.Nop()}), "/stats"); rec.Code != http.StatusNotFound {
		t.Errorf("/stats without engine = %d, want 404", rec.Code)
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), 0)
	if srv.ReadHeaderTimeout != 10*time.Second || srv.IdleTimeout != 40*time.Second {
		t.Errorf("timeouts = %v/%v", srv.ReadHeaderTimeout, srv.IdleTimeout)
	}
}

func TestRouterMiddleware(t *testing.T) {
	h := NewRouter(Options{RateLimit: 2, Logger: zerolog.Nop()})

	rec := get(t, h, "/livez")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response is missing X-Request-ID")
	}

	get(t, h, "/livez")
	if rec := get(t, h, "/livez"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", rec.Code)
	}
}
