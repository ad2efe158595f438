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
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/lint"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// Linter lints files. Satisfied by *lint.LintRunner.
type Linter interface {
	LintFiles(ctx context.Context, paths []string) ([]*lint.LintResult, error)
}

// FormatChecker reports unformatted files. Satisfied by *lint.Formatter.
type FormatChecker interface {
	CheckFormat(ctx context.Context, paths []string, opts lint.FormatOptions) (*lint.FormatReport, error)
}

// ListFilesFunc lists the repository files a source-tree check inspects.
type ListFilesFunc func(ctx context.Context, in *Input) ([]string, error)

// FormatOptions tunes CheckPatchFormatted.
type FormatOptions struct {
	// CheckPython includes Python files.
	CheckPython bool

	// ResultKind is the kind of result produced for unformatted files.
	// NewInput sets KindPromptWarning.
	ResultKind result.Kind
}

// walkSkipDirs are never descended into by the default ListFiles.
var walkSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	"out":          true,
	"node_modules": true,
	"vendor":       true,
}

// Input is everything a check may read.
//
// Thread Safety: Read-only once built. With* helpers return copies.
type Input struct {
	// RepoRoot is the absolute repository root.
	RepoRoot string

	// Change is the change under test.
	Change *change.Change

	// FilesToCheck is the default selection for FilterSourceFile.
	FilesToCheck []string

	// FilesToSkip is the default exclusion for FilterSourceFile.
	FilesToSkip []string

	// Canned holds the host checks that project checks may call.
	Canned *Registry

	// Linter runs external linters. May be nil.
	Linter Linter

	// Formatter runs formatter dry runs. May be nil.
	Formatter FormatChecker

	// Format tunes CheckPatchFormatted.
	Format FormatOptions

	// TreeStatusURL is queried by CheckTreeIsOpen. Empty disables it.
	TreeStatusURL string

	// HTTPClient is used for network checks.
	HTTPClient *http.Client

	// Clock returns the current time.
	Clock func() time.Time

	// Logger receives check diagnostics.
	Logger *slog.Logger

	affected    []change.AffectedFile
	hasAffected bool
	listFiles   ListFilesFunc
	pathPrefix  string
}

// NewInput creates an Input for a change with default file rules.
func NewInput(c *change.Change) *Input {
	in := &Input{
		Change:       c,
		FilesToCheck: append([]string(nil), change.DefaultFilesToCheck...),
		FilesToSkip:  append([]string(nil), change.DefaultFilesToSkip...),
		Format:       FormatOptions{ResultKind: result.KindPromptWarning},
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		Clock:        time.Now,
		Logger:       slog.Default(),
	}
	if c != nil {
		in.RepoRoot = c.RepoRoot
	}
	return in
}

func (in *Input) clone() *Input {
	cp := *in
	cp.FilesToCheck = append([]string(nil), in.FilesToCheck...)
	cp.FilesToSkip = append([]string(nil), in.FilesToSkip...)
	return &cp
}

// Now returns the current time from the input's clock.
func (in *Input) Now() time.Time {
	if in.Clock == nil {
		return time.Now()
	}
	return in.Clock()
}

// Log returns the input's logger.
func (in *Input) Log() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

// PathPrefix returns the prefix applied to every LocalPath, or "".
func (in *Input) PathPrefix() string {
	return in.pathPrefix
}

// AffectedFiles returns the files of the change, optionally including
// deletions. Paths carry the configured prefix.
func (in *Input) AffectedFiles(includeDeletes bool) []change.AffectedFile {
	var src []change.AffectedFile
	switch {
	case in.hasAffected:
		src = in.affected
	case in.Change != nil:
		src = in.Change.Files
	}

	out := make([]change.AffectedFile, 0, len(src))
	for _, f := range src {
		if !includeDeletes && f.Action == change.ActionDeleted {
			continue
		}
		if in.pathPrefix != "" {
			f.LocalPath = in.pathPrefix + f.LocalPath
		}
		out = append(out, f)
	}
	return out
}

// AffectedSourceFiles returns non-deleted files accepted by filter. A nil
// filter uses FilterSourceFile.
func (in *Input) AffectedSourceFiles(filter func(change.AffectedFile) bool) []change.AffectedFile {
	if filter == nil {
		filter = in.FilterSourceFile
	}
	var out []change.AffectedFile
	for _, f := range in.AffectedFiles(false) {
		if filter(f) {
			out = append(out, f)
		}
	}
	return out
}

// FilterSourceFile applies the input's default files-to-check and
// files-to-skip.
func (in *Input) FilterSourceFile(f change.AffectedFile) bool {
	return in.FilterSourceFileWith(f, in.FilesToCheck, in.FilesToSkip)
}

// FilterSourceFileWith applies explicit rules. A nil list uses the input
// default. Pattern errors are logged and reject the file.
func (in *Input) FilterSourceFileWith(f change.AffectedFile, filesToCheck, filesToSkip []string) bool {
	if filesToCheck == nil {
		filesToCheck = in.FilesToCheck
	}
	if filesToSkip == nil {
		filesToSkip = in.FilesToSkip
	}
	ok, err := change.FilterSourceFile(f.LocalPath, filesToCheck, filesToSkip)
	if err != nil {
		in.Log().Warn("file filter failed",
			slog.String("path", f.LocalPath),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

// ReadFile returns the file's text, or "" when it is binary, too large,
// missing, or unreadable.
func (in *Input) ReadFile(f change.AffectedFile) string {
	if f.Readable || f.Content != "" {
		return f.Content
	}
	path := f.AbsolutePath
	if path == "" && in.RepoRoot != "" {
		local := strings.TrimPrefix(f.LocalPath, in.pathPrefix)
		path = filepath.Join(in.RepoRoot, filepath.FromSlash(local))
	}
	content, _ := change.ReadText(path)
	return content
}

// ListFiles lists repository files for source-tree checks.
//
// Description:
//
//	Defaults to walking RepoRoot, skipping SCM, output, vendor, and
//	node_modules directories. WithListFiles replaces the listing.
//	Paths are '/'-separated and relative to RepoRoot.
func (in *Input) ListFiles(ctx context.Context) ([]string, error) {
	if in.listFiles != nil {
		return in.listFiles(ctx, in)
	}
	return walkRepo(ctx, in.RepoRoot)
}

func walkRepo(ctx context.Context, root string) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && walkSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// =============================================================================
// COPY-ON-WRITE HELPERS
// =============================================================================

// WithAffectedFiles returns a copy whose AffectedFiles come from files.
func (in *Input) WithAffectedFiles(files []change.AffectedFile) *Input {
	cp := in.clone()
	cp.affected = append([]change.AffectedFile(nil), files...)
	cp.hasAffected = true
	return cp
}

// WithListFiles returns a copy with a replaced ListFiles.
func (in *Input) WithListFiles(fn ListFilesFunc) *Input {
	cp := in.clone()
	cp.listFiles = fn
	return cp
}

// WithFormatOptions returns a copy with replaced format options.
func (in *Input) WithFormatOptions(opts FormatOptions) *Input {
	cp := in.clone()
	cp.Format = opts
	return cp
}

// WithPathPrefix returns a copy whose AffectedFiles paths start with prefix.
func (in *Input) WithPathPrefix(prefix string) *Input {
	cp := in.clone()
	cp.pathPrefix = prefix
	return cp
}

// WithFilesToSkip returns a copy with extra default files-to-skip rules.
// Rules already present are not repeated.
func (in *Input) WithFilesToSkip(patterns ...string) *Input {
	cp := in.clone()
	for _, p := range patterns {
		if !slices.Contains(cp.FilesToSkip, p) {
			cp.FilesToSkip = append(cp.FilesToSkip, p)
		}
	}
	return cp
}
