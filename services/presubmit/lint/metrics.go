// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("presubmit.lint")
	meter  = otel.Meter("presubmit.lint")
)

var (
	lintLatency      metric.Float64Histogram
	lintTotal        metric.Int64Counter
	issuesFound      metric.Int64Counter
	formatLatency    metric.Float64Histogram
	unformattedFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"lint_duration_seconds",
			metric.WithDescription("Duration of single-file lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"lint_total",
			metric.WithDescription("Total number of lint runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesFound, err = meter.Int64Counter(
			"lint_issues_found_total",
			metric.WithDescription("Total number of reportable lint issues"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		formatLatency, err = meter.Float64Histogram(
			"format_check_duration_seconds",
			metric.WithDescription("Duration of formatter dry runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		unformattedFound, err = meter.Int64Counter(
			"format_unformatted_files_total",
			metric.WithDescription("Total number of files a formatter would change"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startLintSpan(ctx context.Context, language, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "LintRunner.Lint",
		trace.WithAttributes(
			attribute.String("lint.language", language),
			attribute.String("lint.file_path", filePath),
		),
	)
}

func setLintSpanResult(span trace.Span, errorCount, warningCount int, linterAvailable bool) {
	span.SetAttributes(
		attribute.Int("lint.error_count", errorCount),
		attribute.Int("lint.warning_count", warningCount),
		attribute.Bool("lint.linter_available", linterAvailable),
	)
}

func recordLintMetrics(ctx context.Context, language string, duration time.Duration, errorCount, warningCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)
	lintLatency.Record(ctx, duration.Seconds(), attrs)
	lintTotal.Add(ctx, 1, attrs)

	if success {
		issuesFound.Add(ctx, int64(errorCount), metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("severity", SeverityError.String()),
		))
		issuesFound.Add(ctx, int64(warningCount), metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("severity", SeverityWarning.String()),
		))
	}
}

func startFormatSpan(ctx context.Context, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Formatter.CheckFormat",
		trace.WithAttributes(
			attribute.Int("format.file_count", fileCount),
		),
	)
}

func recordFormatMetrics(ctx context.Context, flag string, duration time.Duration, unformatted int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("formatter", flag))
	formatLatency.Record(ctx, duration.Seconds(), attrs)
	unformattedFound.Add(ctx, int64(unformatted), attrs)
}
