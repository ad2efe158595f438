// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package result defines the records presubmit checks emit.
//
// A check returns zero or more Results. Each carries a Kind that decides
// whether the change is blocked:
//
//	| Kind              | Effect                              |
//	|-------------------|-------------------------------------|
//	| KindError         | Block the change                    |
//	| KindPromptWarning | Ask the user to confirm, else allow |
//	| KindNotify        | Informational only                  |
package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the severity of a presubmit result.
type Kind int

const (
	// KindNotify is informational and never blocks.
	KindNotify Kind = iota

	// KindPromptWarning surfaces a warning the user may accept.
	KindPromptWarning

	// KindError blocks the change.
	KindError
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotify:
		return "notify"
	case KindPromptWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseKind parses a kind string. Unknown values default to KindNotify.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "error":
		return KindError
	case "warning", "prompt_warning":
		return KindPromptWarning
	default:
		return KindNotify
	}
}

// MarshalJSON encodes the kind as its string form.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the string form produced by MarshalJSON.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding result kind: %w", err)
	}
	*k = ParseKind(s)
	return nil
}

// Result is a single message produced by a check.
//
// Thread Safety: Treat as immutable; helpers return copies.
type Result struct {
	// Kind decides whether the result blocks the change.
	Kind Kind `json:"kind"`

	// Check is the name of the check that produced the result. Set by the runner.
	Check string `json:"check,omitempty"`

	// Message is the human-readable summary.
	Message string `json:"message"`

	// Items lists offending paths or entries, in discovery order.
	Items []string `json:"items,omitempty"`

	// LongText holds verbose detail such as tool output.
	LongText string `json:"long_text,omitempty"`
}

// NewError creates a blocking result.
func NewError(message string, items ...string) Result {
	return Result{Kind: KindError, Message: message, Items: items}
}

// NewPromptWarning creates a non-blocking warning.
func NewPromptWarning(message string, items ...string) Result {
	return Result{Kind: KindPromptWarning, Message: message, Items: items}
}

// NewNotify creates an informational result.
func NewNotify(message string, items ...string) Result {
	return Result{Kind: KindNotify, Message: message, Items: items}
}

// WithLongText returns a copy with LongText set.
func (r Result) WithLongText(text string) Result {
	r.LongText = text
	return r
}

// Escalate returns a copy of the result with Kind set to KindError.
func (r Result) Escalate() Result {
	r.Kind = KindError
	return r
}

// IsBlocking returns true if the result blocks the change.
func (r Result) IsBlocking() bool {
	return r.Kind == KindError
}

// String formats the result the way it is printed in text output.
func (r Result) String() string {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, item := range r.Items {
		b.WriteString("\n  ")
		b.WriteString(item)
	}
	if r.LongText != "" {
		b.WriteString("\n\n")
		b.WriteString(r.LongText)
	}
	return b.String()
}

// Results is an ordered collection of results.
type Results []Result

// HasErrors returns true if any result blocks.
func (rs Results) HasErrors() bool {
	for _, r := range rs {
		if r.Kind == KindError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any result is a prompt warning.
func (rs Results) HasWarnings() bool {
	for _, r := range rs {
		if r.Kind == KindPromptWarning {
			return true
		}
	}
	return false
}

// Filter returns the results of the given kind, preserving order.
func (rs Results) Filter(kind Kind) Results {
	out := make(Results, 0, len(rs))
	for _, r := range rs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns the number of results per kind.
func (rs Results) Counts() map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, r := range rs {
		counts[r.Kind]++
	}
	return counts
}
