// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"trace", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownLevel) {
				t.Errorf("error = %v, want ErrUnknownLevel", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Writer: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "check", "CheckLicense")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "check=CheckLicense") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{JSON: true, Service: "presubmit", Writer: &buf})
	logger.Info("run finished")

	out := buf.String()
	if !strings.Contains(out, `"service":"presubmit"`) {
		t.Errorf("service attribute missing: %s", out)
	}
	if !strings.Contains(out, `"msg":"run finished"`) {
		t.Errorf("message missing: %s", out)
	}
}

func TestNew_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Quiet: true, Writer: &buf})
	logger.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestNew_LogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := New(Config{LogDir: dir, Service: "presubmit", Writer: &buf})
	logger.Info("to both", "files", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "presubmit_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files = %v, err = %v", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"to both"`) {
		t.Errorf("file log missing record: %s", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("stderr log missing record: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf}).With("run_id", "abc")
	logger.Info("started")
	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("child attribute missing: %s", buf.String())
	}
	if logger.Slog() == nil {
		t.Error("Slog() = nil")
	}
}

func TestLogger_TraceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{JSON: true, Writer: &buf}).Slog()

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "presubmit.Run")
	defer span.End()

	logger.InfoContext(ctx, "inside span")
	want := span.SpanContext().TraceID().String()
	if !strings.Contains(buf.String(), want) {
		t.Errorf("trace_id %s missing: %s", want, buf.String())
	}

	buf.Reset()
	logger.InfoContext(context.Background(), "outside span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace_id: %s", buf.String())
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = false, want true")
	}

	slog.New(h).Info("only b")
	if a.Len() != 0 || !strings.Contains(b.String(), "only b") {
		t.Errorf("a=%q b=%q", a.String(), b.String())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/.presubmit/logs"); got != filepath.Join(home, ".presubmit/logs") {
		t.Errorf("expandPath() = %q", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath() = %q", got)
	}
}
