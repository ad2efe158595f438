// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package canned

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/lint"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// =============================================================================
// LINT
// =============================================================================

// CheckChangeLintsClean lints the affected source files and reports every
// error and warning the linters found.
func CheckChangeLintsClean(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	var paths []string
	for _, f := range in.AffectedSourceFiles(nil) {
		paths = append(paths, strings.TrimPrefix(f.LocalPath, in.PathPrefix()))
	}
	return lintPaths(ctx, in, paths, "Changelist failed lint check.")
}

// CheckSourceTreeLintsClean lints every source file Input.ListFiles
// returns.
func CheckSourceTreeLintsClean(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	files, err := in.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing source tree: %w", err)
	}

	var paths []string
	for _, p := range files {
		if in.FilterSourceFile(change.NewAffectedFile(p, change.ActionModified)) {
			paths = append(paths, p)
		}
	}
	return lintPaths(ctx, in, paths, "Source tree failed lint check.")
}

func lintPaths(ctx context.Context, in *checks.Input, paths []string, message string) ([]result.Result, error) {
	if in.Linter == nil || len(paths) == 0 {
		return nil, nil
	}

	lintResults, err := in.Linter.LintFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	var items []string
	for _, lr := range lintResults {
		if lr == nil {
			continue
		}
		if !lr.LinterAvailable {
			in.Log().Debug("linter not installed",
				slog.String("linter", lr.Linter),
				slog.String("file", lr.FilePath),
			)
			continue
		}
		for _, issue := range lr.Reportable() {
			items = append(items, issue.String())
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return []result.Result{result.NewPromptWarning(message, items...)}, nil
}

// =============================================================================
// FORMAT
// =============================================================================

// CheckPatchFormatted runs formatter dry runs over the affected files.
//
// Description:
//
//	Reports unformatted files with a hint naming the formatter flags to
//	pass to git cl format. Python is checked only when
//	Input.Format.CheckPython is set. The result kind comes from
//	Input.Format.ResultKind.
func CheckPatchFormatted(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	if in.Formatter == nil {
		return nil, nil
	}

	var paths []string
	for _, f := range in.AffectedFiles(false) {
		paths = append(paths, strings.TrimPrefix(f.LocalPath, in.PathPrefix()))
	}
	if len(paths) == 0 {
		return nil, nil
	}

	report, err := in.Formatter.CheckFormat(ctx, paths, lint.FormatOptions{CheckPython: in.Format.CheckPython})
	if err != nil {
		return nil, err
	}
	for _, skipped := range report.Skipped {
		in.Log().Debug("formatter not installed", slog.String("formatter", skipped))
	}
	if !report.HasUnformatted() {
		return nil, nil
	}

	r := result.NewPromptWarning(
		"Your patch is not formatted, please run git cl format "+strings.Join(report.Flags, " "),
		report.Paths()...,
	)
	r.Kind = in.Format.ResultKind
	return []result.Result{r}, nil
}
