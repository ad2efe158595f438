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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// ErrNilInput indicates Run was called without an input.
var ErrNilInput = errors.New("input must not be nil")

// CheckRun records one check execution.
type CheckRun struct {
	// Name is the check name.
	Name string `json:"name"`

	// Registry is the registry the check came from.
	Registry string `json:"registry"`

	// Results is how many results the check produced.
	Results int `json:"results"`

	// Duration is the check's wall time.
	Duration time.Duration `json:"duration"`

	// Error is the failure message if the check could not run.
	Error string `json:"error,omitempty"`
}

// Report is the outcome of a presubmit run.
type Report struct {
	// RunID identifies the run in logs and telemetry.
	RunID string `json:"run_id"`

	// Results in check order.
	Results result.Results `json:"results"`

	// Checks lists every executed check.
	Checks []CheckRun `json:"checks"`

	// Duration is the total run time.
	Duration time.Duration `json:"duration"`
}

// HasErrors returns true if any result blocks.
func (r *Report) HasErrors() bool {
	return r.Results.HasErrors()
}

// HasWarnings returns true if any result is a prompt warning.
func (r *Report) HasWarnings() bool {
	return r.Results.HasWarnings()
}

// ExitCode returns 1 for blocking results, or for warnings when strict;
// otherwise 0.
func (r *Report) ExitCode(strict bool) int {
	if r.HasErrors() || (strict && r.HasWarnings()) {
		return 1
	}
	return 0
}

// Runner executes checks in a fixed order.
//
// Description:
//
//	The canned registry's pan-project checks run first, then every project
//	check in registration order. A check that returns an error or panics
//	becomes a blocking result naming the check; the run continues.
//
// Thread Safety: Safe for concurrent use; each Run is independent.
type Runner struct {
	canned  *Registry
	project *Registry
	logger  *slog.Logger
	only    map[string]bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOnly restricts the run to the named checks.
func WithOnly(names ...string) RunnerOption {
	return func(r *Runner) {
		if len(names) == 0 {
			return
		}
		r.only = make(map[string]bool, len(names))
		for _, n := range names {
			r.only[n] = true
		}
	}
}

// NewRunner creates a Runner. Either registry may be nil.
func NewRunner(canned, project *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		canned:  canned,
		project: project,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scheduled struct {
	registry *Registry
	name     string
}

// Plan returns the checks Run would execute, as "registry/name".
func (r *Runner) Plan() []string {
	var out []string
	for _, s := range r.schedule() {
		out = append(out, s.registry.Name()+"/"+s.name)
	}
	return out
}

func (r *Runner) schedule() []scheduled {
	var out []scheduled
	if r.canned != nil {
		for _, name := range r.canned.PanProjectNames() {
			out = append(out, scheduled{r.canned, name})
		}
	}
	if r.project != nil {
		for _, name := range r.project.Names() {
			out = append(out, scheduled{r.project, name})
		}
	}
	if r.only == nil {
		return out
	}
	filtered := out[:0]
	for _, s := range out {
		if r.only[s.name] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Run executes every scheduled check.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	in - Input shared by all checks. Canned is filled from the runner if unset.
//
// Outputs:
//
//	*Report - Results and per-check records.
//	error - Non-nil only for nil input or context cancellation.
func (r *Runner) Run(ctx context.Context, in *Input) (*Report, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	if in.Canned == nil && r.canned != nil {
		in = in.clone()
		in.Canned = r.canned
	}

	runID := uuid.NewString()
	ctx, span := startRunSpan(ctx, runID)
	defer span.End()

	logger := r.logger.With(slog.String("run_id", runID))
	start := time.Now()
	report := &Report{
		RunID:   runID,
		Results: make(result.Results, 0),
	}

	for _, s := range r.schedule() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c, ok := s.registry.Get(s.name)
		if !ok {
			continue
		}

		checkStart := time.Now()
		results, err := runOne(ctx, s.name, c, in)
		run := CheckRun{
			Name:     s.name,
			Registry: s.registry.Name(),
			Duration: time.Since(checkStart),
		}
		if err != nil {
			run.Error = err.Error()
			results = append(results, result.NewError(fmt.Sprintf("%s failed to run: %v", s.name, err)))
			logger.Warn("check failed", slog.String("check", s.name), slog.String("error", err.Error()))
		}
		for i := range results {
			if results[i].Check == "" {
				results[i].Check = s.name
			}
		}
		run.Results = len(results)

		report.Results = append(report.Results, results...)
		report.Checks = append(report.Checks, run)
		recordCheckMetrics(ctx, s.registry.Name(), s.name, run.Duration, results, err != nil)

		logger.Debug("check completed",
			slog.String("check", s.name),
			slog.String("registry", run.Registry),
			slog.Int("results", run.Results),
			slog.Duration("duration", run.Duration),
		)
	}

	report.Duration = time.Since(start)
	setRunSpanResult(span, report)

	logger.Info("presubmit finished",
		slog.Int("checks", len(report.Checks)),
		slog.Int("errors", len(report.Results.Filter(result.KindError))),
		slog.Int("warnings", len(report.Results.Filter(result.KindPromptWarning))),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// runOne runs a check in its own span and converts panics into errors.
func runOne(ctx context.Context, name string, c Check, in *Input) (results []result.Result, err error) {
	ctx, span := startCheckSpan(ctx, name)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			results, err = nil, fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			span.RecordError(err)
		}
	}()

	return c(ctx, in)
}
