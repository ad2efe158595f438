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
	"strconv"
	"time"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the normalized severity of a lint finding.
type Severity int

const (
	// SeverityInfo is style or hint output. Presubmit drops it.
	SeverityInfo Severity = iota

	// SeverityWarning is a finding worth reporting.
	SeverityWarning

	// SeverityError is a finding the linter considers a defect.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a linter's severity word. Unknown words map to
// SeverityWarning.
func SeverityFromString(s string) Severity {
	switch s {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "style", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// =============================================================================
// LINTER CONFIG
// =============================================================================

// LinterConfig describes how to invoke one linter.
type LinterConfig struct {
	// Language is the language this linter handles (e.g., "go", "python").
	Language string

	// Command is the linter executable name (e.g., "golangci-lint").
	Command string

	// Args precede the file path. Must request JSON output.
	Args []string

	// Extensions are the file extensions this linter handles.
	Extensions []string

	// Timeout is the maximum time for one invocation.
	Timeout time.Duration

	// Available is set by DetectAvailableLinters.
	Available bool
}

// Clone returns a deep copy.
func (c *LinterConfig) Clone() *LinterConfig {
	clone := *c
	clone.Args = append([]string(nil), c.Args...)
	clone.Extensions = append([]string(nil), c.Extensions...)
	return &clone
}

// =============================================================================
// RESULTS
// =============================================================================

// LintResult is the outcome of linting one file.
type LintResult struct {
	// Errors are findings with SeverityError after policy.
	Errors []LintIssue `json:"errors"`

	// Warnings are findings with SeverityWarning after policy.
	Warnings []LintIssue `json:"warnings"`

	// Infos are informational findings.
	Infos []LintIssue `json:"infos,omitempty"`

	// Duration is how long the linter took.
	Duration time.Duration `json:"duration"`

	// Linter is the executable that produced the result.
	Linter string `json:"linter"`

	// Language is the language that was linted.
	Language string `json:"language"`

	// FilePath is the file as given to the runner.
	FilePath string `json:"file_path"`

	// LinterAvailable is false when the linter was not installed and
	// nothing was checked.
	LinterAvailable bool `json:"linter_available"`
}

// HasErrors returns true if any error-level finding exists.
func (r *LintResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasIssues returns true if any error or warning exists.
func (r *LintResult) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// Reportable returns errors followed by warnings.
func (r *LintResult) Reportable() []LintIssue {
	issues := make([]LintIssue, 0, len(r.Errors)+len(r.Warnings))
	issues = append(issues, r.Errors...)
	issues = append(issues, r.Warnings...)
	return issues
}

// LintIssue is one finding.
type LintIssue struct {
	// File is the path reported by the linter.
	File string `json:"file"`

	// Line is 1-indexed.
	Line int `json:"line"`

	// Column is 1-indexed, 0 when unknown.
	Column int `json:"column,omitempty"`

	// Rule is the linter rule (e.g., "errcheck", "F401").
	Rule string `json:"rule"`

	// RuleURL links to the rule's documentation.
	RuleURL string `json:"rule_url,omitempty"`

	// Severity after policy.
	Severity Severity `json:"severity"`

	// Message is the linter's description.
	Message string `json:"message"`

	// Linter is the tool that reported the finding.
	Linter string `json:"linter,omitempty"`
}

// Location returns "file:line[:col]".
func (i *LintIssue) Location() string {
	loc := i.File + ":" + strconv.Itoa(i.Line)
	if i.Column > 0 {
		loc += ":" + strconv.Itoa(i.Column)
	}
	return loc
}

// String formats the issue as a single report line.
func (i *LintIssue) String() string {
	if i.Rule == "" {
		return i.Location() + ": " + i.Message
	}
	return i.Location() + ": " + i.Message + " [" + i.Rule + "]"
}
