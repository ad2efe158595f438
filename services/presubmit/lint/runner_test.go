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
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTools records invocations and answers from a per-command script.
type fakeTools struct {
	mu        sync.Mutex
	installed map[string]bool
	respond   func(name string, args []string) (CommandOutput, error)
	calls     []string
}

func (f *fakeTools) lookPath(name string) (string, error) {
	if f.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func (f *fakeTools) exec(_ context.Context, _ string, name string, args ...string) (CommandOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	f.mu.Unlock()
	return f.respond(name, args)
}

func newFakeRunner(tools *fakeTools) *LintRunner {
	return NewLintRunner(
		WithWorkingDir("/repo"),
		WithExec(tools.exec),
		WithLookPath(tools.lookPath),
		WithConcurrency(2),
	)
}

func TestNewLintRunner(t *testing.T) {
	runner := NewLintRunner(WithWorkingDir("/test/dir"))

	if runner.configs == nil || runner.policies == nil {
		t.Fatal("registries should not be nil")
	}
	if runner.workingDir != "/test/dir" {
		t.Errorf("workingDir = %q", runner.workingDir)
	}
}

func TestLintRunner_Lint_UnsupportedLanguage(t *testing.T) {
	runner := NewLintRunner()
	_, err := runner.Lint(context.Background(), "file.unknown")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestLintRunner_Lint_NilContext(t *testing.T) {
	runner := NewLintRunner()
	_, err := runner.Lint(nil, "test.go") //nolint:staticcheck
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLintRunner_Lint_NotInstalled(t *testing.T) {
	tools := &fakeTools{installed: map[string]bool{}}
	runner := newFakeRunner(tools)

	result, err := runner.Lint(context.Background(), "a.py")
	require.NoError(t, err)
	assert.False(t, result.LinterAvailable)
	assert.False(t, result.HasIssues())
	assert.Empty(t, tools.calls)
}

func TestLintRunner_Lint_AppliesPolicy(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"ruff": true},
		respond: func(name string, args []string) (CommandOutput, error) {
			return CommandOutput{Stdout: []byte(`[
				{"code": "F401", "filename": "/repo/a.py", "location": {"row": 1, "column": 1}, "message": "unused import"},
				{"code": "E501", "filename": "/repo/a.py", "location": {"row": 2, "column": 80}, "message": "line too long"},
				{"code": "W605", "filename": "/repo/a.py", "location": {"row": 3, "column": 1}, "message": "invalid escape"}
			]`)}, nil
		},
	}
	runner := newFakeRunner(tools)

	result, err := runner.Lint(context.Background(), "a.py")
	require.NoError(t, err)

	assert.True(t, result.LinterAvailable)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, "ruff", result.Linter)
	require.Len(t, tools.calls, 1)
	assert.Contains(t, tools.calls[0], filepath.Join("/repo", "a.py"))
}

func TestLintRunner_Lint_FailureWithoutOutput(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"golangci-lint": true},
		respond: func(string, []string) (CommandOutput, error) {
			return CommandOutput{Stderr: []byte("config error"), ExitCode: 3}, nil
		},
	}
	runner := newFakeRunner(tools)

	_, err := runner.Lint(context.Background(), "main.go")
	require.ErrorIs(t, err, ErrToolFailed)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "golangci-lint", toolErr.Tool)
	assert.Equal(t, "config error", toolErr.Output)
}

func TestLintRunner_Lint_BadJSON(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"eslint": true},
		respond: func(string, []string) (CommandOutput, error) {
			return CommandOutput{Stdout: []byte("{oops")}, nil
		},
	}
	_, err := newFakeRunner(tools).Lint(context.Background(), "x.js")
	assert.ErrorIs(t, err, ErrParseOutput)
}

func TestLintRunner_LintFiles_SkipsUnsupportedKeepsOrder(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"ruff": true, "eslint": true},
		respond: func(name string, args []string) (CommandOutput, error) {
			if name == "ruff" {
				return CommandOutput{Stdout: []byte(`[]`)}, nil
			}
			return CommandOutput{Stdout: []byte(`[]`)}, nil
		},
	}
	runner := newFakeRunner(tools)

	results, err := runner.LintFiles(context.Background(), []string{"b.py", "README.md", "a.ts", "c.py"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "b.py", results[0].FilePath)
	assert.Equal(t, "a.ts", results[1].FilePath)
	assert.Equal(t, "c.py", results[2].FilePath)
}

func TestLintRunner_LintFiles_PropagatesFailure(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"ruff": true},
		respond: func(string, []string) (CommandOutput, error) {
			return CommandOutput{}, errors.New("exec format error")
		},
	}
	_, err := newFakeRunner(tools).LintFiles(context.Background(), []string{"a.py"})
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.ErrorContains(t, err, "linting a.py")
}

func TestLintRunner_DetectAvailableLinters(t *testing.T) {
	tools := &fakeTools{installed: map[string]bool{"eslint": true}}
	runner := newFakeRunner(tools)

	available := runner.DetectAvailableLinters()
	assert.Equal(t, map[string]bool{
		"go":         false,
		"javascript": true,
		"python":     false,
		"typescript": true,
	}, available)
	assert.True(t, runner.IsAvailable("typescript"))
	assert.True(t, runner.Configs().Get("javascript").Available)
}

func TestLintIssue_String(t *testing.T) {
	issue := LintIssue{File: "a.go", Line: 3, Column: 7, Message: "bad", Rule: "errcheck"}
	assert.Equal(t, "a.go:3:7: bad [errcheck]", issue.String())

	issue = LintIssue{File: "a.go", Line: 3, Message: "bad"}
	assert.Equal(t, "a.go:3: bad", issue.String())
}
