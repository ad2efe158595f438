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
	"testing"
)

func TestParseGolangCIOutput(t *testing.T) {
	data := []byte(`{
		"Issues": [
			{
				"FromLinter": "errcheck",
				"Text": "Error return value is not checked",
				"Severity": "",
				"Pos": {"Filename": "main.go", "Line": 10, "Column": 5}
			},
			{
				"FromLinter": "typecheck",
				"Text": "undefined: foo",
				"Severity": "error",
				"Pos": {"Filename": "main.go", "Line": 3, "Column": 1}
			}
		]
	}`)

	issues, err := parseGolangCIOutput(data)
	if err != nil {
		t.Fatalf("parseGolangCIOutput: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}

	first := issues[0]
	if first.Rule != "errcheck" || first.Line != 10 || first.Column != 5 {
		t.Errorf("unexpected first issue: %+v", first)
	}
	if first.Severity != SeverityWarning {
		t.Errorf("empty severity should default to warning, got %v", first.Severity)
	}
	if issues[1].Severity != SeverityError {
		t.Errorf("Severity = %v, want error", issues[1].Severity)
	}
	if first.Linter != "golangci-lint" {
		t.Errorf("Linter = %q", first.Linter)
	}
}

func TestParseGolangCIOutput_Invalid(t *testing.T) {
	if _, err := parseGolangCIOutput([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseRuffOutput(t *testing.T) {
	data := []byte(`[
		{"code": "F401", "filename": "a.py", "location": {"row": 1, "column": 8}, "message": "os imported but unused", "url": "https://docs.astral.sh/ruff/rules/unused-import"},
		{"code": "W605", "filename": "a.py", "location": {"row": 4, "column": 2}, "message": "invalid escape"},
		{"code": "D100", "filename": "a.py", "location": {"row": 1, "column": 1}, "message": "missing docstring"}
	]`)

	issues, err := parseRuffOutput(data)
	if err != nil {
		t.Fatalf("parseRuffOutput: %v", err)
	}

	want := []Severity{SeverityError, SeverityWarning, SeverityInfo}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d", len(issues), len(want))
	}
	for i, sev := range want {
		if issues[i].Severity != sev {
			t.Errorf("issue %d (%s) severity = %v, want %v", i, issues[i].Rule, issues[i].Severity, sev)
		}
	}
	if issues[0].RuleURL == "" {
		t.Error("RuleURL should be set")
	}
}

func TestMapRuffSeverity(t *testing.T) {
	tests := []struct {
		code string
		want Severity
	}{
		{"E711", SeverityError},
		{"F841", SeverityError},
		{"S101", SeverityError},
		{"W291", SeverityWarning},
		{"C901", SeverityWarning},
		{"I001", SeverityInfo},
		{"D203", SeverityInfo},
		{"", SeverityWarning},
	}
	for _, tt := range tests {
		if got := mapRuffSeverity(tt.code); got != tt.want {
			t.Errorf("mapRuffSeverity(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestParseESLintOutput(t *testing.T) {
	data := []byte(`[
		{"filePath": "/repo/a.ts", "messages": [
			{"ruleId": "no-undef", "severity": 2, "message": "x is not defined", "line": 2, "column": 3},
			{"ruleId": "prefer-const", "severity": 1, "message": "use const", "line": 5, "column": 1}
		]},
		{"filePath": "/repo/b.ts", "messages": []}
	]`)

	issues, err := parseESLintOutput(data)
	if err != nil {
		t.Fatalf("parseESLintOutput: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].Severity != SeverityError || issues[1].Severity != SeverityWarning {
		t.Errorf("unexpected severities: %v, %v", issues[0].Severity, issues[1].Severity)
	}
	if issues[0].File != "/repo/a.ts" {
		t.Errorf("File = %q", issues[0].File)
	}
}

func TestGetParser(t *testing.T) {
	for _, lang := range []string{"go", "python", "typescript", "javascript"} {
		if GetParser(lang) == nil {
			t.Errorf("GetParser(%q) = nil", lang)
		}
	}
	if GetParser("cobol") != nil {
		t.Error("GetParser(cobol) should be nil")
	}
}
