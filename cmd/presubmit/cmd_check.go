// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// checkOptions selects the change and tunes the run.
type checkOptions struct {
	mode   string
	rev    string
	files  []string
	added  []string
	patch  string
	only   []string
	strict bool
	yes    bool
	noLint bool
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run presubmit checks against the current change",
		Long: `Run the host and project presubmit checks.

The change comes from git by default (--mode diff|staged|commit|branch),
from explicit paths (--files, --added), or from a unified diff (--patch).

Examples:
  presubmit check
  presubmit check --mode branch --rev origin/master
  presubmit check --added browser/new_file.cc --files browser/old_file.cc
  git diff HEAD~1 | presubmit check --patch -
  presubmit check --only CheckLicense --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCheck(cmd.Context(), opts, cmd.InOrStdin())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", string(change.ModeDiff), "Change detection: diff, staged, commit, branch")
	f.StringVar(&opts.rev, "rev", "", "Commit for --mode commit, base branch for --mode branch")
	f.StringSliceVar(&opts.files, "files", nil, "Check these modified files instead of asking git")
	f.StringSliceVar(&opts.added, "added", nil, "Check these files as newly added")
	f.StringVar(&opts.patch, "patch", "", "Read the change from a unified diff file ('-' for stdin)")
	f.StringSliceVar(&opts.only, "only", nil, "Run only the named checks")
	f.BoolVar(&opts.strict, "strict", false, "Fail on warnings")
	f.BoolVar(&opts.yes, "yes", false, "Do not prompt on warnings")
	f.BoolVar(&opts.noLint, "no-lint", false, "Skip external linters and formatters")
	return cmd
}

// runCheck loads the change, runs every check, and prints the report.
func (a *app) runCheck(ctx context.Context, opts checkOptions, stdin io.Reader) error {
	c, err := a.loadChange(ctx, opts, stdin)
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}

	host, proj, err := a.registries()
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}
	in := a.input(c, host)
	if opts.noLint {
		in.Linter = nil
		in.Formatter = nil
	}

	runner := checks.NewRunner(host, proj,
		checks.WithRunnerLogger(a.logger.Slog()),
		checks.WithOnly(opts.only...),
	)
	report, err := runner.Run(ctx, in)
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}

	if a.flags.json {
		if err := writeJSON(a.stdout, report); err != nil {
			return &exitError{code: ExitToolError, err: err}
		}
	} else {
		renderReport(a.printer(), report)
	}

	strict := opts.strict || a.cfg.Strict
	if code := report.ExitCode(strict); code != ExitOK {
		return &exitError{code: code}
	}

	if report.HasWarnings() && !opts.yes && !a.flags.json && a.interactive() {
		ok, err := a.confirmer.Confirm(ctx,
			"Presubmit found warnings. Continue anyway?",
			fmt.Sprintf("%d warning(s) in run %s", len(report.Results.Filter(result.KindPromptWarning)), report.RunID))
		if err != nil {
			return &exitError{code: ExitToolError, err: err}
		}
		if !ok {
			return blocking
		}
	}
	return nil
}

// loadChange builds the change from a patch, explicit paths, or git, then
// reads file contents.
func (a *app) loadChange(ctx context.Context, opts checkOptions, stdin io.Reader) (*change.Change, error) {
	var c *change.Change
	switch {
	case opts.patch != "":
		r := stdin
		if opts.patch != "-" {
			f, err := os.Open(opts.patch)
			if err != nil {
				return nil, fmt.Errorf("opening patch: %w", err)
			}
			defer f.Close()
			r = f
		}
		pc, err := change.FromPatch(a.root, r)
		if err != nil {
			return nil, err
		}
		c = pc

	case len(opts.files) > 0 || len(opts.added) > 0:
		files := change.FromPaths(a.root, opts.added, change.ActionAdded).Files
		files = append(files, change.FromPaths(a.root, opts.files, change.ActionModified).Files...)
		c = change.New(a.root, files)

	default:
		mode, err := change.ParseMode(opts.mode)
		if err != nil {
			return nil, err
		}
		git := change.NewGitClient(a.root, change.WithGitLogger(a.logger.Slog()))
		gc, err := git.Change(ctx, change.GitOptions{Mode: mode, Revision: opts.rev})
		if err != nil {
			return nil, err
		}
		c = gc
	}

	if err := change.LoadContents(ctx, c, change.LoadOptions{Logger: a.logger.Slog()}); err != nil {
		return nil, err
	}
	a.logger.Debug("change loaded", "files", len(c.Files), "root", c.RepoRoot)
	return c, nil
}
