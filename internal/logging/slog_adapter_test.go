// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlog(level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(level)
	return slog.New(NewSlogHandler(zl)), &buf
}

func TestSlogHandler_Levels(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	tests := []struct {
		name      string
		log       func(l *slog.Logger)
		wantLevel string
	}{
		{"info", func(l *slog.Logger) { l.Info("m") }, `"level":"info"`},
		{"warn", func(l *slog.Logger) { l.Warn("m") }, `"level":"warn"`},
		{"error", func(l *slog.Logger) { l.Error("m") }, `"level":"error"`},
		{"debug", func(l *slog.Logger) { l.Debug("m") }, `"level":"debug"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferedSlog(zerolog.DebugLevel)
			tt.log(l)
			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("expected %s in %s", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	l, buf := newBufferedSlog(zerolog.InfoLevel)

	l.Info("service restarted",
		"service", "warm",
		"attempt", 3,
		"backoff", 2*time.Second,
		"healthy", false,
		"err", errors.New("boom"),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"warm"`,
		`"attempt":3`,
		`"healthy":false`,
		`"err":"boom"`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroup(t *testing.T) {
	l, buf := newBufferedSlog(zerolog.InfoLevel)

	l.With("supervisor", "root").WithGroup("event").Info("failure", "service", "events")

	out := buf.String()
	if !strings.Contains(out, `"supervisor":"root"`) {
		t.Errorf("expected pre-bound attr, got %s", out)
	}
	if !strings.Contains(out, `"event.service":"events"`) {
		t.Errorf("expected grouped key, got %s", out)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if zerolog.GlobalLevel() <= zerolog.ErrorLevel && !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}
