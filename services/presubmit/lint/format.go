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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// FORMATTER CONFIG
// =============================================================================

// OutputMode is how a formatter reports files it would change.
type OutputMode int

const (
	// ModeListFiles runs once for all files; stdout lists the dirty ones.
	ModeListFiles OutputMode = iota

	// ModeExitCode runs once per file; DirtyExitCode marks a dirty file.
	ModeExitCode
)

// FormatterConfig describes one formatter dry run.
type FormatterConfig struct {
	// Flag is the format command flag that fixes these files (e.g., "--go").
	Flag string

	// Command is the executable.
	Command string

	// Args precede the file paths.
	Args []string

	// Extensions selects the files this formatter handles.
	Extensions []string

	// Mode is how dirty files are reported.
	Mode OutputMode

	// LinePrefix is stripped from each stdout line in ModeListFiles.
	LinePrefix string

	// DirtyExitCode marks a dirty file in ModeExitCode.
	DirtyExitCode int

	// Python marks the formatter as opt-in via FormatOptions.CheckPython.
	Python bool

	// Timeout bounds one invocation.
	Timeout time.Duration
}

// DefaultFormatters are the dry runs CheckFormat performs, in report order.
var DefaultFormatters = []FormatterConfig{
	{
		Flag:       "--go",
		Command:    "gofmt",
		Args:       []string{"-l"},
		Extensions: []string{".go"},
		Mode:       ModeListFiles,
		Timeout:    30 * time.Second,
	},
	{
		Flag:       "--python",
		Command:    "ruff",
		Args:       []string{"format", "--check"},
		Extensions: []string{".py", ".pyi"},
		Mode:       ModeListFiles,
		LinePrefix: "Would reformat: ",
		Python:     true,
		Timeout:    30 * time.Second,
	},
	{
		Flag:       "--js",
		Command:    "prettier",
		Args:       []string{"--list-different"},
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".css", ".json", ".html"},
		Mode:       ModeListFiles,
		Timeout:    60 * time.Second,
	},
	{
		Flag:          "--gn",
		Command:       "gn",
		Args:          []string{"format", "--dry-run"},
		Extensions:    []string{".gn", ".gni"},
		Mode:          ModeExitCode,
		DirtyExitCode: 2,
		Timeout:       10 * time.Second,
	},
}

func (c FormatterConfig) handles(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// FormatOptions selects optional formatters.
type FormatOptions struct {
	// CheckPython enables Python formatting checks.
	CheckPython bool
}

// FormatReport lists files a formatter would change.
type FormatReport struct {
	// Unformatted maps a formatter flag to dirty paths, in input order.
	Unformatted map[string][]string `json:"unformatted"`

	// Flags lists the flags with dirty files, in formatter order.
	Flags []string `json:"flags"`

	// Skipped lists formatter commands not installed.
	Skipped []string `json:"skipped,omitempty"`
}

// HasUnformatted returns true if any file needs formatting.
func (r *FormatReport) HasUnformatted() bool {
	return len(r.Flags) > 0
}

// Paths returns every dirty path in formatter order.
func (r *FormatReport) Paths() []string {
	var paths []string
	for _, flag := range r.Flags {
		paths = append(paths, r.Unformatted[flag]...)
	}
	return paths
}

// =============================================================================
// FORMATTER
// =============================================================================

// Formatter runs formatter dry runs.
//
// Thread Safety: Safe for concurrent use.
type Formatter struct {
	configs    []FormatterConfig
	workingDir string
	run        ExecFunc
	lookPath   LookPathFunc
	logger     *slog.Logger
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithFormatters replaces the formatter list.
func WithFormatters(configs []FormatterConfig) FormatterOption {
	return func(f *Formatter) {
		f.configs = append([]FormatterConfig(nil), configs...)
	}
}

// WithFormatWorkingDir sets the directory formatters run in.
func WithFormatWorkingDir(dir string) FormatterOption {
	return func(f *Formatter) {
		f.workingDir = dir
	}
}

// WithFormatExec replaces process execution.
func WithFormatExec(fn ExecFunc) FormatterOption {
	return func(f *Formatter) {
		f.run = fn
	}
}

// WithFormatLookPath replaces executable discovery.
func WithFormatLookPath(fn LookPathFunc) FormatterOption {
	return func(f *Formatter) {
		f.lookPath = fn
	}
}

// WithFormatLogger sets the logger.
func WithFormatLogger(logger *slog.Logger) FormatterOption {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFormatter creates a Formatter with DefaultFormatters.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		configs:  append([]FormatterConfig(nil), DefaultFormatters...),
		run:      execCommand,
		lookPath: exec.LookPath,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CheckFormat reports the files each formatter would change.
//
// Description:
//
//	Paths are relative to the working directory. Each formatter sees only
//	the paths with its extensions. Formatters not on PATH are listed in
//	Skipped. Python formatting runs only with opts.CheckPython.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	paths - Files to check, '/'-separated and relative to the working directory.
//	opts - Optional formatters.
//
// Outputs:
//
//	*FormatReport - Dirty files per flag.
//	error - Non-nil if a formatter failed to run.
//
// Thread Safety: Safe for concurrent use.
func (f *Formatter) CheckFormat(ctx context.Context, paths []string, opts FormatOptions) (*FormatReport, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startFormatSpan(ctx, len(paths))
	defer span.End()

	report := &FormatReport{Unformatted: make(map[string][]string)}

	for _, cfg := range f.configs {
		if cfg.Python && !opts.CheckPython {
			continue
		}

		var selected []string
		for _, p := range paths {
			if cfg.handles(p) {
				selected = append(selected, p)
			}
		}
		if len(selected) == 0 {
			continue
		}

		if _, err := f.lookPath(cfg.Command); err != nil {
			f.logger.Debug("Formatter not installed",
				slog.String("flag", cfg.Flag),
				slog.String("command", cfg.Command),
			)
			report.Skipped = append(report.Skipped, cfg.Command)
			continue
		}

		start := time.Now()
		var (
			dirty []string
			err   error
		)
		switch cfg.Mode {
		case ModeExitCode:
			dirty, err = f.checkEach(ctx, cfg, selected)
		default:
			dirty, err = f.checkList(ctx, cfg, selected)
		}
		if err != nil {
			return nil, err
		}
		recordFormatMetrics(ctx, cfg.Flag, time.Since(start), len(dirty))

		if len(dirty) > 0 {
			report.Unformatted[cfg.Flag] = dirty
			report.Flags = append(report.Flags, cfg.Flag)
		}
	}

	return report, nil
}

// checkList runs the formatter once and maps listed files back to inputs.
func (f *Formatter) checkList(ctx context.Context, cfg FormatterConfig, paths []string) ([]string, error) {
	args := append([]string(nil), cfg.Args...)
	args = append(args, toNative(paths)...)

	out, err := runWithTimeout(ctx, f.run, cfg.Timeout, f.workingDir, cfg.Command, cfg.Flag, args)
	if err != nil {
		return nil, err
	}

	listed := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out.Stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), cfg.LinePrefix))
		if line != "" {
			listed[f.relative(line)] = true
		}
	}

	var dirty []string
	for _, p := range paths {
		if listed[p] {
			dirty = append(dirty, p)
		}
	}

	if len(dirty) == 0 && out.ExitCode > 1 {
		return nil, NewToolError(cfg.Command, cfg.Flag, ErrToolFailed).WithOutput(strings.TrimSpace(string(out.Stderr)))
	}
	return dirty, nil
}

// checkEach runs the formatter per file and reads the exit code.
func (f *Formatter) checkEach(ctx context.Context, cfg FormatterConfig, paths []string) ([]string, error) {
	var dirty []string
	for _, p := range paths {
		args := append(append([]string(nil), cfg.Args...), filepath.FromSlash(p))
		out, err := runWithTimeout(ctx, f.run, cfg.Timeout, f.workingDir, cfg.Command, cfg.Flag, args)
		if err != nil {
			return nil, err
		}
		switch out.ExitCode {
		case 0:
		case cfg.DirtyExitCode:
			dirty = append(dirty, p)
		default:
			return nil, NewToolError(cfg.Command, cfg.Flag, ErrToolFailed).
				WithOutput(fmt.Sprintf("%s: exit %d: %s", p, out.ExitCode, strings.TrimSpace(string(out.Stderr))))
		}
	}
	return dirty, nil
}

// relative converts a tool-printed path to the '/'-separated form used for input.
func (f *Formatter) relative(printed string) string {
	if filepath.IsAbs(printed) && f.workingDir != "" {
		if rel, err := filepath.Rel(f.workingDir, printed); err == nil {
			printed = rel
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(printed), "./")
}

func toNative(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.FromSlash(p)
	}
	return out
}
