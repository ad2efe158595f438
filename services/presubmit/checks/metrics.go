// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package checks

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

var (
	tracer = otel.Tracer("presubmit.checks")
	meter  = otel.Meter("presubmit.checks")
)

var (
	checkLatency  metric.Float64Histogram
	checkTotal    metric.Int64Counter
	resultsByKind metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		checkLatency, err = meter.Float64Histogram(
			"presubmit_check_duration_seconds",
			metric.WithDescription("Duration of individual presubmit checks"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkTotal, err = meter.Int64Counter(
			"presubmit_checks_total",
			metric.WithDescription("Total number of presubmit check executions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		resultsByKind, err = meter.Int64Counter(
			"presubmit_results_total",
			metric.WithDescription("Total number of presubmit results by kind"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "presubmit.Run",
		trace.WithAttributes(attribute.String("presubmit.run_id", runID)),
	)
}

func setRunSpanResult(span trace.Span, report *Report) {
	counts := report.Results.Counts()
	span.SetAttributes(
		attribute.Int("presubmit.check_count", len(report.Checks)),
		attribute.Int("presubmit.error_count", counts[result.KindError]),
		attribute.Int("presubmit.warning_count", counts[result.KindPromptWarning]),
	)
}

func startCheckSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "presubmit.Check",
		trace.WithAttributes(attribute.String("presubmit.check", name)),
	)
}

func recordCheckMetrics(ctx context.Context, registry, name string, duration time.Duration, results []result.Result, failed bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("registry", registry),
		attribute.String("check", name),
		attribute.Bool("failed", failed),
	)
	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checkTotal.Add(ctx, 1, attrs)

	for _, r := range results {
		resultsByKind.Add(ctx, 1, metric.WithAttributes(
			attribute.String("check", name),
			attribute.String("kind", r.Kind.String()),
		))
	}
}
