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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

func newTestRegistries() (*Registry, *Registry) {
	canned := NewRegistry("canned")
	canned.MustRegister("CheckLicense", constant(result.NewNotify("canned license")), PanProject())
	canned.MustRegister("CheckPatchFormatted", constant(result.NewPromptWarning("format")))
	canned.MustRegister("CheckOwners", constant(), PanProject())

	project := NewRegistry("project")
	project.MustRegister("CheckLicense", constant(result.NewNotify("project license")))
	project.MustRegister("CheckFormatting", func(ctx context.Context, in *Input) ([]result.Result, error) {
		return in.Canned.Call(ctx, "CheckPatchFormatted", in)
	})
	return canned, project
}

func TestRunner_Order(t *testing.T) {
	canned, project := newTestRegistries()
	r := NewRunner(canned, project)

	assert.Equal(t, []string{
		"canned/CheckLicense",
		"canned/CheckOwners",
		"project/CheckLicense",
		"project/CheckFormatting",
	}, r.Plan())

	report, err := r.Run(context.Background(), NewInput(nil))
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)
	require.Len(t, report.Checks, 4)
	require.Len(t, report.Results, 3)

	assert.Equal(t, "canned license", report.Results[0].Message)
	assert.Equal(t, "CheckLicense", report.Results[0].Check)
	assert.Equal(t, "project license", report.Results[1].Message)
	assert.Equal(t, "CheckFormatting", report.Results[2].Check)
	assert.True(t, report.HasWarnings())
	assert.False(t, report.HasErrors())
}

func TestRunner_ErrorsAndPanicsBecomeResults(t *testing.T) {
	project := NewRegistry("project")
	project.MustRegister("Fails", func(context.Context, *Input) ([]result.Result, error) {
		return nil, errors.New("tool missing")
	})
	project.MustRegister("Panics", func(context.Context, *Input) ([]result.Result, error) {
		panic("nil map")
	})
	project.MustRegister("Fine", constant(result.NewNotify("ok")))

	report, err := NewRunner(nil, project).Run(context.Background(), NewInput(nil))
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, result.KindError, report.Results[0].Kind)
	assert.Equal(t, "Fails failed to run: tool missing", report.Results[0].Message)
	assert.Contains(t, report.Results[1].Message, "panic: nil map")
	assert.Equal(t, "ok", report.Results[2].Message)
	assert.Equal(t, "tool missing", report.Checks[0].Error)
	assert.Equal(t, 1, report.ExitCode(false))
}

func TestReport_ExitCode(t *testing.T) {
	tests := []struct {
		name    string
		results result.Results
		strict  bool
		want    int
	}{
		{"clean", nil, true, 0},
		{"warning lenient", result.Results{result.NewPromptWarning("w")}, false, 0},
		{"warning strict", result.Results{result.NewPromptWarning("w")}, true, 1},
		{"error", result.Results{result.NewError("e")}, false, 1},
		{"notify strict", result.Results{result.NewNotify("n")}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Results: tt.results}
			assert.Equal(t, tt.want, r.ExitCode(tt.strict))
		})
	}
}

func TestRunner_WithOnly(t *testing.T) {
	canned, project := newTestRegistries()
	r := NewRunner(canned, project, WithOnly("CheckFormatting"))

	assert.Equal(t, []string{"project/CheckFormatting"}, r.Plan())

	report, err := r.Run(context.Background(), NewInput(nil))
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "format", report.Results[0].Message)
}

func TestRunner_Cancelled(t *testing.T) {
	canned, project := newTestRegistries()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(canned, project).Run(ctx, NewInput(nil))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Checks)
}

func TestRunner_NilInput(t *testing.T) {
	_, err := NewRunner(nil, nil).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}

func TestRunner_KeepsCallerCanned(t *testing.T) {
	canned, project := newTestRegistries()
	other := NewRegistry("other")
	other.MustRegister("CheckPatchFormatted", constant(result.NewNotify("other")))

	in := NewInput(nil)
	in.Canned = other

	report, err := NewRunner(canned, project, WithOnly("CheckFormatting")).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "other", report.Results[0].Message)
}
