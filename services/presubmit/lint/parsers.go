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
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// GOLANGCI-LINT PARSER
// =============================================================================

type golangciOutput struct {
	Issues []golangciIssue `json:"Issues"`
}

type golangciIssue struct {
	FromLinter string           `json:"FromLinter"`
	Text       string           `json:"Text"`
	Severity   string           `json:"Severity"`
	Pos        golangciPosition `json:"Pos"`
}

type golangciPosition struct {
	Filename string `json:"Filename"`
	Line     int    `json:"Line"`
	Column   int    `json:"Column"`
}

// parseGolangCIOutput parses `golangci-lint run --out-format=json`.
func parseGolangCIOutput(data []byte) ([]LintIssue, error) {
	var output golangciOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parsing golangci-lint output: %w", err)
	}

	issues := make([]LintIssue, 0, len(output.Issues))
	for _, gi := range output.Issues {
		severity := SeverityWarning
		if gi.Severity != "" {
			severity = SeverityFromString(strings.ToLower(gi.Severity))
		}
		issues = append(issues, LintIssue{
			File:     gi.Pos.Filename,
			Line:     gi.Pos.Line,
			Column:   gi.Pos.Column,
			Rule:     gi.FromLinter,
			Severity: severity,
			Message:  gi.Text,
			Linter:   "golangci-lint",
		})
	}
	return issues, nil
}

// =============================================================================
// RUFF PARSER
// =============================================================================

type ruffIssue struct {
	Code     string       `json:"code"`
	Filename string       `json:"filename"`
	Location ruffLocation `json:"location"`
	Message  string       `json:"message"`
	URL      string       `json:"url"`
}

type ruffLocation struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// parseRuffOutput parses `ruff check --output-format=json`.
func parseRuffOutput(data []byte) ([]LintIssue, error) {
	var ruffIssues []ruffIssue
	if err := json.Unmarshal(data, &ruffIssues); err != nil {
		return nil, fmt.Errorf("parsing ruff output: %w", err)
	}

	issues := make([]LintIssue, 0, len(ruffIssues))
	for _, ri := range ruffIssues {
		issues = append(issues, LintIssue{
			File:     ri.Filename,
			Line:     ri.Location.Row,
			Column:   ri.Location.Column,
			Rule:     ri.Code,
			RuleURL:  ri.URL,
			Severity: mapRuffSeverity(ri.Code),
			Message:  ri.Message,
			Linter:   "ruff",
		})
	}
	return issues, nil
}

// mapRuffSeverity maps a Ruff rule code's category letter to a severity.
func mapRuffSeverity(code string) Severity {
	if code == "" {
		return SeverityWarning
	}
	switch strings.ToUpper(code[:1]) {
	case "E", "F", "S":
		return SeverityError
	case "I", "D":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// =============================================================================
// ESLINT PARSER
// =============================================================================

type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"` // 1 = warning, 2 = error
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// parseESLintOutput parses `eslint --format=json`.
func parseESLintOutput(data []byte) ([]LintIssue, error) {
	var output []eslintFile
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parsing eslint output: %w", err)
	}

	var issues []LintIssue
	for _, file := range output {
		for _, msg := range file.Messages {
			severity := SeverityInfo
			switch msg.Severity {
			case 2:
				severity = SeverityError
			case 1:
				severity = SeverityWarning
			}
			issues = append(issues, LintIssue{
				File:     file.FilePath,
				Line:     msg.Line,
				Column:   msg.Column,
				Rule:     msg.RuleID,
				Severity: severity,
				Message:  msg.Message,
				Linter:   "eslint",
			})
		}
	}
	return issues, nil
}

// =============================================================================
// PARSER REGISTRY
// =============================================================================

// ParserFunc parses linter output into issues.
type ParserFunc func(data []byte) ([]LintIssue, error)

var (
	parserMu       sync.RWMutex
	parserRegistry = map[string]ParserFunc{
		"go":         parseGolangCIOutput,
		"python":     parseRuffOutput,
		"typescript": parseESLintOutput,
		"javascript": parseESLintOutput,
	}
)

// GetParser returns the parser for a language, or nil.
func GetParser(language string) ParserFunc {
	parserMu.RLock()
	defer parserMu.RUnlock()
	return parserRegistry[language]
}

// RegisterParser adds or replaces the parser for a language.
func RegisterParser(language string, parser ParserFunc) {
	parserMu.Lock()
	defer parserMu.Unlock()
	parserRegistry[language] = parser
}
