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
	"time"
)

// =============================================================================
// TYPES
// =============================================================================

// File is a single candidate for header validation.
type File struct {
	// Path is the repository-relative path, reported verbatim on violation.
	Path string

	// Content is the full file text. Empty content (absent, unreadable or
	// binary) always passes.
	Content string

	// IsNew is true when the file is added by the change rather than modified.
	IsNew bool
}

// Status is the per-file validation outcome.
type Status int

const (
	// StatusValid means the header matched or the content was empty.
	StatusValid Status = iota

	// StatusInvalidExisting means a pre-existing file lacks a valid header.
	StatusInvalidExisting

	// StatusInvalidNew means a newly added file lacks a valid header.
	StatusInvalidNew
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalidExisting:
		return "invalid_existing"
	case StatusInvalidNew:
		return "invalid_new"
	default:
		return "unknown"
	}
}

// Severity is the overall outcome of a validation run.
type Severity int

const (
	// SeverityNone means no violations.
	SeverityNone Severity = iota

	// SeverityWarning means only existing files violate; the change may proceed.
	SeverityWarning

	// SeverityBlocking means at least one new file violates.
	SeverityBlocking
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityWarning:
		return "warning"
	case SeverityBlocking:
		return "blocking"
	default:
		return "unknown"
	}
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path   string `json:"path"`
	Status Status `json:"status"`

	// Err is ErrMissingKeyLine or ErrPatternMismatch for violations, else nil.
	Err error `json:"-"`
}

// Report collects the outcome of one Validate call.
//
// Thread Safety: Immutable after creation by the validator.
type Report struct {
	// Files holds one entry per input file, in input order.
	Files []FileResult `json:"files"`

	// Violations lists the paths of every violating file, in input order.
	Violations []string `json:"violations"`

	// Pattern is the exact regex source that was required.
	Pattern string `json:"pattern"`

	// Severity is the escalated outcome across all files.
	Severity Severity `json:"severity"`

	// Year is the current year the pattern was built for.
	Year int `json:"year"`
}

// HasViolations returns true if any file failed validation.
func (r *Report) HasViolations() bool {
	return len(r.Violations) > 0
}

// NewViolations returns the paths of violating new files.
func (r *Report) NewViolations() []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == StatusInvalidNew {
			out = append(out, f.Path)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks license headers on a batch of files.
//
// Thread Safety: Safe for concurrent use. Holds no mutable state.
type Validator struct {
	opts  PatternOptions
	clock func() time.Time
}

// Option configures the Validator.
type Option func(*Validator)

// WithClock sets the time source used to derive the current year.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		v.clock = clock
	}
}

// WithFirstYear sets the earliest accepted copyright year.
func WithFirstYear(year int) Option {
	return func(v *Validator) {
		v.opts.FirstYear = year
	}
}

// WithHolder sets the copyright holder named in the header.
func WithHolder(holder string) Option {
	return func(v *Validator) {
		v.opts.Holder = holder
	}
}

// WithKeyLine replaces the pre-filter line. It is escaped before being
// placed in the full pattern.
func WithKeyLine(keyLine string) Option {
	return func(v *Validator) {
		v.opts.KeyLine = keyLine
	}
}

// NewValidator creates a validator using the wall clock and default header.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Pattern builds the pattern for the validator's current year.
//
// Outputs:
//
//	*Pattern - The compiled pattern
//	error - ErrInvalidYearRange if the configured first year is in the future
func (v *Validator) Pattern() (*Pattern, error) {
	return NewPattern(v.clock().Year(), v.opts)
}

// Validate checks every file and escalates the outcome.
//
// Description:
//
//	Builds the pattern from the current year, then evaluates each file in
//	input order. Empty content passes. Every violation is collected; the
//	run never stops at the first bad file. The report is blocking when any
//	violator is new, a warning when only existing files violate.
//
// Inputs:
//
//	files - Candidate files with content and new/modified flag
//
// Outputs:
//
//	*Report - Per-file results, violating paths, pattern text and severity
//	error - ErrInvalidYearRange if the pattern cannot be built
//
// Thread Safety: Safe for concurrent use.
func (v *Validator) Validate(files []File) (*Report, error) {
	return v.ValidateContext(context.Background(), files)
}

// ValidateContext is Validate with a context for tracing and metrics.
// The context is not consulted for cancellation.
func (v *Validator) ValidateContext(ctx context.Context, files []File) (*Report, error) {
	ctx, span := startValidateSpan(ctx, len(files))
	defer span.End()
	start := time.Now()

	now := v.clock()
	pattern, err := NewPattern(now.Year(), v.opts)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Files:      make([]FileResult, 0, len(files)),
		Violations: make([]string, 0),
		Pattern:    pattern.String(),
		Year:       now.Year(),
	}

	anyNew := false
	for _, f := range files {
		fr := FileResult{Path: f.Path, Status: StatusValid}
		if checkErr := pattern.CheckContent(f.Content); checkErr != nil {
			fr.Err = checkErr
			if f.IsNew {
				fr.Status = StatusInvalidNew
				anyNew = true
			} else {
				fr.Status = StatusInvalidExisting
			}
			report.Violations = append(report.Violations, f.Path)
		}
		report.Files = append(report.Files, fr)
	}

	switch {
	case anyNew:
		report.Severity = SeverityBlocking
	case len(report.Violations) > 0:
		report.Severity = SeverityWarning
	default:
		report.Severity = SeverityNone
	}

	setValidateSpanResult(span, len(report.Violations), report.Severity)
	recordValidateMetrics(ctx, report, time.Since(start))

	return report, nil
}
