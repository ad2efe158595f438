// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package license

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("presubmit.license")
	meter  = otel.Meter("presubmit.license")
)

var (
	validateLatency metric.Float64Histogram
	filesChecked    metric.Int64Counter
	violationsFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		validateLatency, err = meter.Float64Histogram(
			"license_validate_duration_seconds",
			metric.WithDescription("Duration of license header validation runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesChecked, err = meter.Int64Counter(
			"license_files_checked_total",
			metric.WithDescription("Total number of files checked for a license header"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		violationsFound, err = meter.Int64Counter(
			"license_violations_total",
			metric.WithDescription("Total number of files with a bad license header"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startValidateSpan(ctx context.Context, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "license.Validate",
		trace.WithAttributes(
			attribute.Int("license.file_count", fileCount),
		),
	)
}

func setValidateSpanResult(span trace.Span, violations int, severity Severity) {
	span.SetAttributes(
		attribute.Int("license.violation_count", violations),
		attribute.String("license.severity", severity.String()),
	)
}

func recordValidateMetrics(ctx context.Context, report *Report, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("severity", report.Severity.String()),
	)
	validateLatency.Record(ctx, duration.Seconds(), attrs)
	filesChecked.Add(ctx, int64(len(report.Files)))

	for _, f := range report.Files {
		if f.Status == StatusValid {
			continue
		}
		reason := "pattern_mismatch"
		if errors.Is(f.Err, ErrMissingKeyLine) {
			reason = "missing_key_line"
		}
		violationsFound.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", f.Status.String()),
			attribute.String("reason", reason),
		))
	}
}
