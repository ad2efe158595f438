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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// LINT RUNNER
// =============================================================================

// LintRunner executes linters and processes their output.
//
// Description:
//
//	Detects installed linters lazily on first use, runs the linter for each
//	file's language, parses JSON output, and applies the language policy.
//	Missing linters degrade to empty results.
//
// Thread Safety: Safe for concurrent use.
type LintRunner struct {
	configs     *ConfigRegistry
	policies    *PolicyRegistry
	workingDir  string
	concurrency int
	run         ExecFunc
	lookPath    LookPathFunc
	logger      *slog.Logger

	detectOnce sync.Once
	availMu    sync.RWMutex
	available  map[string]bool
}

// Option configures the LintRunner.
type Option func(*LintRunner)

// WithWorkingDir sets the directory linters run in. Relative file paths are
// resolved against it.
func WithWorkingDir(dir string) Option {
	return func(r *LintRunner) {
		r.workingDir = dir
	}
}

// WithConfigs sets a custom config registry.
func WithConfigs(configs *ConfigRegistry) Option {
	return func(r *LintRunner) {
		r.configs = configs
	}
}

// WithPolicies sets a custom policy registry.
func WithPolicies(policies *PolicyRegistry) Option {
	return func(r *LintRunner) {
		r.policies = policies
	}
}

// WithConcurrency bounds how many linter processes run at once.
func WithConcurrency(n int) Option {
	return func(r *LintRunner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithExec replaces process execution.
func WithExec(fn ExecFunc) Option {
	return func(r *LintRunner) {
		r.run = fn
	}
}

// WithLookPath replaces executable discovery.
func WithLookPath(fn LookPathFunc) Option {
	return func(r *LintRunner) {
		r.lookPath = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *LintRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewLintRunner creates a new lint runner.
//
// Inputs:
//
//	opts - Optional configuration options
//
// Outputs:
//
//	*LintRunner - The configured runner
func NewLintRunner(opts ...Option) *LintRunner {
	r := &LintRunner{
		configs:     NewConfigRegistry(),
		policies:    NewPolicyRegistry(),
		concurrency: runtime.GOMAXPROCS(0),
		run:         execCommand,
		lookPath:    exec.LookPath,
		logger:      slog.Default(),
		available:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DetectAvailableLinters probes PATH for every configured linter.
//
// Outputs:
//
//	map[string]bool - Language to availability.
//
// Thread Safety: Safe for concurrent use.
func (r *LintRunner) DetectAvailableLinters() map[string]bool {
	r.availMu.Lock()
	defer r.availMu.Unlock()

	result := make(map[string]bool)
	for _, lang := range r.configs.Languages() {
		config := r.configs.Get(lang)
		if config == nil {
			continue
		}

		_, err := r.lookPath(config.Command)
		available := err == nil

		r.available[lang] = available
		r.configs.SetAvailable(lang, available)
		result[lang] = available

		if !available {
			r.logger.Debug("Linter not installed",
				slog.String("language", lang),
				slog.String("command", config.Command),
			)
		}
	}
	return result
}

// IsAvailable returns whether the linter for a language is installed.
func (r *LintRunner) IsAvailable(language string) bool {
	r.detectOnce.Do(func() { r.DetectAvailableLinters() })

	r.availMu.RLock()
	defer r.availMu.RUnlock()
	return r.available[language]
}

// Supports returns true if some linter handles the file's extension.
func (r *LintRunner) Supports(filePath string) bool {
	return r.configs.LanguageFor(filePath) != ""
}

// Lint runs the linter for the file's language.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	filePath - File to lint, absolute or relative to the working directory.
//
// Outputs:
//
//	*LintResult - Categorized issues.
//	error - Non-nil if no linter handles the file or the linter failed.
//
// Errors:
//
//	ErrUnsupportedLanguage - No linter for the file type
//	ErrToolTimeout - Linter exceeded timeout
//	ErrToolFailed - Linter process failed
//	ErrParseOutput - Output was not valid JSON
//
// Thread Safety: Safe for concurrent use.
func (r *LintRunner) Lint(ctx context.Context, filePath string) (*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	language := r.configs.LanguageFor(filePath)
	if language == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filepath.Ext(filePath))
	}
	config := r.configs.Get(language)

	ctx, span := startLintSpan(ctx, language, filePath)
	defer span.End()
	start := time.Now()

	result := &LintResult{
		Errors:   make([]LintIssue, 0),
		Warnings: make([]LintIssue, 0),
		Linter:   config.Command,
		Language: language,
		FilePath: filePath,
	}

	if !r.IsAvailable(language) {
		result.Duration = time.Since(start)
		setLintSpanResult(span, 0, 0, false)
		recordLintMetrics(ctx, language, result.Duration, 0, 0, true)
		return result, nil
	}
	result.LinterAvailable = true

	absPath := filePath
	if !filepath.IsAbs(absPath) && r.workingDir != "" {
		absPath = filepath.Join(r.workingDir, filePath)
	}
	dir := r.workingDir
	if dir == "" {
		dir = filepath.Dir(absPath)
	}

	args := append(append([]string(nil), config.Args...), absPath)
	out, err := runWithTimeout(ctx, r.run, config.Timeout, dir, config.Command, language, args)
	if err == nil && out.ExitCode != 0 && len(bytes.TrimSpace(out.Stdout)) == 0 {
		err = NewToolError(config.Command, language, ErrToolFailed).WithOutput(string(out.Stderr))
	}
	if err != nil {
		recordLintMetrics(ctx, language, time.Since(start), 0, 0, false)
		return nil, err
	}

	issues, err := r.parseOutput(language, out.Stdout)
	if err != nil {
		recordLintMetrics(ctx, language, time.Since(start), 0, 0, false)
		return nil, fmt.Errorf("%w: %v", ErrParseOutput, err)
	}

	result.Errors, result.Warnings, result.Infos = ApplyPolicy(issues, r.policies.Get(language))
	result.Duration = time.Since(start)

	setLintSpanResult(span, len(result.Errors), len(result.Warnings), true)
	recordLintMetrics(ctx, language, result.Duration, len(result.Errors), len(result.Warnings), true)

	r.logger.Debug("Lint completed",
		slog.String("file", filePath),
		slog.String("linter", config.Command),
		slog.Duration("duration", result.Duration),
		slog.Int("errors", len(result.Errors)),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (r *LintRunner) parseOutput(language string, output []byte) ([]LintIssue, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		return nil, nil
	}
	parser := GetParser(language)
	if parser == nil {
		return nil, fmt.Errorf("no parser for language: %s", language)
	}
	return parser(output)
}

// Configs returns the config registry for customization.
func (r *LintRunner) Configs() *ConfigRegistry {
	return r.configs
}

// Policies returns the policy registry for customization.
func (r *LintRunner) Policies() *PolicyRegistry {
	return r.policies
}

// =============================================================================
// BATCH OPERATIONS
// =============================================================================

// LintFiles lints every supported file, skipping the rest.
//
// Description:
//
//	Runs up to the configured concurrency of linter processes. Results are
//	returned in input order with unsupported files omitted. The first
//	linter failure cancels the remaining work.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	filePaths - Files to lint.
//
// Outputs:
//
//	[]*LintResult - One result per supported file.
//	error - Non-nil if any linter failed.
//
// Thread Safety: Safe for concurrent use.
func (r *LintRunner) LintFiles(ctx context.Context, filePaths []string) ([]*LintResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	slots := make([]*LintResult, len(filePaths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range filePaths {
		if !r.Supports(path) {
			continue
		}
		g.Go(func() error {
			res, err := r.Lint(gCtx, path)
			if err != nil {
				return fmt.Errorf("linting %s: %w", path, err)
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*LintResult, 0, len(filePaths))
	for _, res := range slots {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, nil
}
