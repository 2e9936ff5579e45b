// Devblog - Personal Tech Blog and Related Posts Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/devblog

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id1 := GenerateCorrelationID()
	id2 := GenerateCorrelationID()

	if len(id1) != 8 {
		t.Errorf("expected 8-character correlation ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique correlation IDs")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("expected empty correlation ID, got %s", id)
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	if id := CorrelationIDFromContext(ctx); id != "abc12345" {
		t.Errorf("CorrelationIDFromContext() = %q, want %q", id, "abc12345")
	}

	ctx = ContextWithNewCorrelationID(context.Background())
	if id := CorrelationIDFromContext(ctx); len(id) != 8 {
		t.Errorf("expected generated 8-character id, got %q", id)
	}
}

func TestCorrelationIDFromNilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is exercised on purpose
	if id := CorrelationIDFromContext(nil); id != "" {
		t.Errorf("expected empty id for nil context, got %q", id)
	}
}

func TestCtx_AttachesCorrelationID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithLogger(context.Background(), base)
	ctx = ContextWithCorrelationID(ctx, "deadbeef")

	l := Ctx(ctx)
	l.Info().Msg("traced")

	out := buf.String()
	if !strings.Contains(out, `"correlation_id":"deadbeef"`) {
		t.Errorf("expected correlation_id field, got: %s", out)
	}
	if !strings.Contains(out, "traced") {
		t.Errorf("expected message, got: %s", out)
	}
}

func TestCtx_WithoutLoggerUsesGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	defer Init(DefaultConfig())

	l := Ctx(context.Background())
	l.Info().Msg("global")

	if !strings.Contains(buf.String(), "global") {
		t.Errorf("expected global logger output, got: %s", buf.String())
	}
	if strings.Contains(buf.String(), "correlation_id") {
		t.Errorf("unexpected correlation_id without one in context: %s", buf.String())
	}
}
