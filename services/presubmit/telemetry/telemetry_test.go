// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")
	cfg := DefaultConfig()

	if cfg.ServiceName != "presubmit" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "presubmit")
	}
	if cfg.TraceExporter != ExporterNone {
		t.Errorf("TraceExporter = %q, want %q", cfg.TraceExporter, ExporterNone)
	}
	if cfg.MetricExporter != ExporterNone {
		t.Errorf("MetricExporter = %q, want %q", cfg.MetricExporter, ExporterNone)
	}
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")
	t.Setenv("OTEL_METRICS_EXPORTER", "prometheus")
	cfg := DefaultConfig()

	if cfg.TraceExporter != "stdout" || cfg.MetricExporter != "prometheus" {
		t.Errorf("exporters = %q/%q, want stdout/prometheus", cfg.TraceExporter, cfg.MetricExporter)
	}
}

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, DefaultConfig())
	if err != ErrNilContext {
		t.Errorf("Init(nil) error = %v, want %v", err, ErrNilContext)
	}
}

func TestInit_None(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterNone
	cfg.MetricExporter = ExporterNone

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestInit_Stdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterStdout
	cfg.MetricExporter = ExporterNone
	cfg.Writer = &buf

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "presubmit.Check")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "presubmit.Check") {
		t.Errorf("stdout exporter output missing span name: %s", buf.String())
	}
}

func TestInit_Prometheus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterNone
	cfg.MetricExporter = ExporterPrometheus

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer shutdown(context.Background())

	counter, err := otel.Meter("test").Int64Counter("presubmit_test_total")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(context.Background(), 1, metric.WithAttributes())

	handler := MetricsHandler()
	if handler == nil {
		t.Fatal("MetricsHandler() = nil")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "presubmit_test_total") {
		t.Errorf("metrics output missing counter")
	}
}

func TestInit_UnknownExporter(t *testing.T) {
	tests := []struct {
		name  string
		trace string
		meter string
	}{
		{"trace", "zipkin", ExporterNone},
		{"metric", ExporterNone, "otlp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TraceExporter = tt.trace
			cfg.MetricExporter = tt.meter

			_, err := Init(context.Background(), cfg)
			if err == nil || !strings.Contains(err.Error(), "unknown exporter type") {
				t.Errorf("Init() error = %v, want unknown exporter", err)
			}
		})
	}
}

func TestLoggerWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithTrace(context.Background(), logger).Info("no span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace_id without span: %s", buf.String())
	}

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	buf.Reset()
	LoggerWithTrace(ctx, logger).Info("with span")
	if !strings.Contains(buf.String(), TraceID(ctx)) {
		t.Errorf("log missing trace id %s: %s", TraceID(ctx), buf.String())
	}

	if LoggerWithTrace(ctx, nil) == nil {
		t.Error("LoggerWithTrace(ctx, nil) = nil")
	}
	if TraceID(context.Background()) != "" {
		t.Error("TraceID without span should be empty")
	}
}
