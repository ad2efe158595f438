// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package overrides adapts the host checks and the project checks to the
// downstream repository.
//
// Every adjustment is an explicit wrapper registered with
// checks.Registry.Override. Apply is called once at startup, after both
// registries are populated and before the first run.
package overrides

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/canned"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
)

// Option configures Apply.
type Option func(*applier)

type applier struct {
	logger *slog.Logger
}

// WithLogger sets the logger for override diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Apply installs every override described by cfg.
//
// Description:
//
//	Overrides are layered innermost first:
//	  1. Host check changes: disables, CheckPatchFormatted with Python on,
//	     forced errors and rewritten messages, CheckChangeLintsClean forced
//	     to errors, CheckSourceTreeLintsClean limited to affected files.
//	  2. Project check changes: disables, forced errors, the include guard
//	     path prefix.
//	  3. Per-check blocklists, in both registries.
//	  4. Extra default files-to-skip, on every check.
//
// Inputs:
//
//	project - The project registry. May be nil.
//	host - The canned registry. Must hold every check cfg names for it.
//	cfg - The overrides. Validated before anything is installed.
//
// Outputs:
//
//	error - ErrInvalidConfig, or checks.ErrCheckNotFound for a missing
//	        host check.
//
// Thread Safety: Call once before running checks.
func Apply(project, host *checks.Registry, cfg Config, opts ...Option) error {
	a := &applier{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if host != nil {
		if err := a.applyHost(host, cfg); err != nil {
			return err
		}
	}
	if project != nil {
		a.applyProject(project, cfg)
	}
	a.applyBlocklist(project, host, cfg.Blocklist)

	if len(cfg.ExtraFilesToSkip) > 0 {
		extra := checks.MapInput(func(in *checks.Input) *checks.Input {
			return in.WithFilesToSkip(cfg.ExtraFilesToSkip...)
		})
		for _, reg := range []*checks.Registry{host, project} {
			if reg == nil {
				continue
			}
			if err := reg.OverrideAll(func(string) checks.Wrapper { return extra }); err != nil {
				return fmt.Errorf("adding files to skip in %s: %w", reg.Name(), err)
			}
		}
	}
	return nil
}

func (a *applier) applyHost(host *checks.Registry, cfg Config) error {
	for _, name := range cfg.DisabledCannedChecks {
		if err := host.Override(name, checks.Disable()); err != nil {
			return fmt.Errorf("disabling %s: %w", name, err)
		}
	}

	formatted := checks.Chain(
		checks.RewriteMessages(cfg.FormatReplacements),
		checks.MapInput(func(in *checks.Input) *checks.Input {
			opts := in.Format
			opts.CheckPython = true
			return in.WithFormatOptions(opts)
		}),
		checks.ForceError(),
	)
	if err := host.Override(canned.PatchFormatted, formatted); err != nil {
		return fmt.Errorf("overriding %s: %w", canned.PatchFormatted, err)
	}

	if err := host.Override(canned.ChangeLintsClean, checks.ForceError()); err != nil {
		return fmt.Errorf("overriding %s: %w", canned.ChangeLintsClean, err)
	}

	sourceTree := checks.Chain(
		checks.MapInput(func(in *checks.Input) *checks.Input {
			return in.WithListFiles(ListAffectedSourceFiles)
		}),
		checks.ForceError(),
	)
	if err := host.Override(canned.SourceTreeLintsClean, sourceTree); err != nil {
		return fmt.Errorf("overriding %s: %w", canned.SourceTreeLintsClean, err)
	}
	return nil
}

func (a *applier) applyProject(project *checks.Registry, cfg Config) {
	for _, name := range cfg.DisabledProjectChecks {
		if !project.Has(name) {
			a.logger.Debug("project check not registered, nothing to disable", slog.String("check", name))
			continue
		}
		_ = project.Override(name, checks.Disable())
	}
	for _, name := range cfg.ForceErrorProjectChecks {
		if project.Has(name) {
			_ = project.Override(name, checks.ForceError())
		}
	}
	if cfg.IncludeGuardPrefix != "" && project.Has(canned.ForIncludeGuards) {
		prefix := cfg.IncludeGuardPrefix
		_ = project.Override(canned.ForIncludeGuards, checks.MapInput(func(in *checks.Input) *checks.Input {
			return in.WithPathPrefix(prefix)
		}))
	}
}

func (a *applier) applyBlocklist(project, host *checks.Registry, blocklist map[string][]string) {
	names := make([]string, 0, len(blocklist))
	for name := range blocklist {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wrap := checks.SkipPaths(blocklist[name])
		applied := false
		for _, reg := range []*checks.Registry{host, project} {
			if reg != nil && reg.Has(name) {
				_ = reg.Override(name, wrap)
				applied = true
			}
		}
		if !applied {
			a.logger.Warn("blocklist names an unknown check", slog.String("check", name))
		}
	}
}

// ListAffectedSourceFiles lists the change's source files instead of the
// whole repository. Paths are relative to the repository root.
func ListAffectedSourceFiles(_ context.Context, in *checks.Input) ([]string, error) {
	files := in.AffectedSourceFiles(nil)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, strings.TrimPrefix(f.LocalPath, in.PathPrefix()))
	}
	return paths, nil
}
