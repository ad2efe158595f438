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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPresubmit/cmd/presubmit/config"
	"github.com/AleutianAI/AleutianPresubmit/pkg/logging"
	"github.com/AleutianAI/AleutianPresubmit/pkg/ux"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/canned"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/lint"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/overrides"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/project"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/telemetry"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitOK means no blocking results.
	ExitOK = 0

	// ExitBlocking means at least one blocking result, or a warning under
	// --strict or a declined prompt.
	ExitBlocking = 1

	// ExitToolError means the tool itself failed (bad config, git error).
	ExitToolError = 2
)

// exitError carries an exit code out of a cobra command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// blocking is returned by commands whose output already explains the failure.
var blocking = &exitError{code: ExitBlocking}

// =============================================================================
// APPLICATION STATE
// =============================================================================

type globalFlags struct {
	configPath  string
	repo        string
	logLevel    string
	personality string
	json        bool
}

// app holds everything commands share. Tests construct it with fakes.
type app struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags

	cfg    config.PresubmitConfig
	root   string
	logger *logging.Logger

	shutdownTelemetry func(context.Context) error

	now         func() time.Time
	confirmer   ux.Confirmer
	interactive func() bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		now:         time.Now,
		confirmer:   ux.HuhConfirmer{},
		interactive: ux.IsInteractive,
	}
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr).run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	a.close()

	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return ExitToolError
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "presubmit",
		Short: "Run presubmit checks against the current change",
		Long: `presubmit runs the host checks and the project checks against a change
and reports blocking errors, warnings, and notices.

Exit Codes:
  0 = No blocking results
  1 = Blocking results (or warnings with --strict)
  2 = Error (invalid config, git failure)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Config file (default <repo>/"+config.FileName+")")
	pf.StringVar(&a.flags.repo, "repo", "", "Repository root (default: detected with git)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.personality, "personality", "", "Output style: full, minimal, machine")
	pf.BoolVar(&a.flags.json, "json", false, "Output as JSON")

	root.AddCommand(
		newCheckCmd(a),
		newChecksCmd(a),
		newLicenseCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup resolves the repository, loads config, and starts logging and
// telemetry. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	if a.flags.personality != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(a.flags.personality))
	} else {
		ux.InitPersonality()
	}

	root, err := a.resolveRoot(cmd.Context())
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}
	a.root = root

	cfg, err := config.Load(a.flags.configPath, root)
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if addr, err := cmd.Flags().GetString("metrics-addr"); err == nil && addr != "" {
		cfg.Telemetry.MetricExporter = telemetry.ExporterPrometheus
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.LogDir,
		Service: "presubmit",
		Writer:  a.stderr,
	})
	slog.SetDefault(a.logger.Slog())

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return &exitError{code: ExitToolError, err: err}
	}
	a.shutdownTelemetry = shutdown
	return nil
}

func (a *app) resolveRoot(ctx context.Context) (string, error) {
	if a.flags.repo != "" {
		return filepath.Abs(a.flags.repo)
	}
	if root, err := change.NewGitClient(".").RepoRoot(ctx); err == nil {
		return root, nil
	}
	return os.Getwd()
}

func (a *app) close() {
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTelemetry(ctx); err != nil && a.logger != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
		cancel()
		a.shutdownTelemetry = nil
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func (a *app) printer() *ux.Printer {
	return ux.NewPrinter(a.stdout)
}

// =============================================================================
// PIPELINE
// =============================================================================

// validator builds the license validator described by the config.
func (a *app) validator() *license.Validator {
	opts := []license.Option{
		license.WithClock(a.now),
		license.WithFirstYear(a.cfg.License.FirstYear),
		license.WithHolder(a.cfg.License.Holder),
	}
	if a.cfg.License.KeyLine != "" {
		opts = append(opts, license.WithKeyLine(a.cfg.License.KeyLine))
	}
	return license.NewValidator(opts...)
}

// registries builds the canned and project registries with every override
// applied.
func (a *app) registries() (host, proj *checks.Registry, err error) {
	host = canned.NewRegistry()
	proj = project.NewRegistry(a.validator())
	if err := overrides.Apply(proj, host, a.cfg.Overrides, overrides.WithLogger(a.logger.Slog())); err != nil {
		return nil, nil, err
	}
	return host, proj, nil
}

// input builds the check input for c.
func (a *app) input(c *change.Change, host *checks.Registry) *checks.Input {
	in := checks.NewInput(c)
	in.Canned = host
	in.TreeStatusURL = a.cfg.TreeStatusURL
	in.Clock = a.now
	in.Logger = a.logger.Slog()
	if !a.cfg.Lint.Disabled {
		in.Linter = lint.NewLintRunner(
			lint.WithWorkingDir(a.root),
			lint.WithConcurrency(a.cfg.Lint.Concurrency),
			lint.WithLogger(a.logger.Slog()),
		)
		in.Formatter = lint.NewFormatter(
			lint.WithFormatWorkingDir(a.root),
			lint.WithFormatLogger(a.logger.Slog()),
		)
	}
	return in
}
