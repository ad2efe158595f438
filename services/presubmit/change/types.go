// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package change describes the set of files a presubmit run inspects.
//
// A Change can be built from git (working tree, index, a commit, or a branch
// range), from a unified diff, or from an explicit path list. File contents
// are loaded separately with LoadContents so checks that only need paths do
// not pay for reads.
package change

import (
	"path/filepath"
	"strings"
)

// Action is the kind of modification a file underwent.
type Action string

const (
	// ActionAdded marks a new file. Only added files count as "new".
	ActionAdded Action = "A"

	// ActionModified marks an existing file with edits.
	ActionModified Action = "M"

	// ActionDeleted marks a removed file.
	ActionDeleted Action = "D"

	// ActionRenamed marks a file moved from OldPath.
	ActionRenamed Action = "R"

	// ActionCopied marks a file copied from OldPath.
	ActionCopied Action = "C"

	// ActionUnknown marks a file whose status could not be determined.
	ActionUnknown Action = "?"
)

// ParseAction maps a git status letter (possibly with a score, e.g. R087)
// to an Action.
func ParseAction(status string) Action {
	if status == "" {
		return ActionUnknown
	}
	switch status[0] {
	case 'A':
		return ActionAdded
	case 'M', 'T':
		return ActionModified
	case 'D':
		return ActionDeleted
	case 'R':
		return ActionRenamed
	case 'C':
		return ActionCopied
	default:
		return ActionUnknown
	}
}

// String returns the single-letter form.
func (a Action) String() string {
	return string(a)
}

// IsNew returns true if the file did not exist before the change.
func (a Action) IsNew() bool {
	return a == ActionAdded
}

// AffectedFile is one file touched by a change.
type AffectedFile struct {
	// LocalPath is relative to the repository root and always uses '/'.
	LocalPath string `json:"path"`

	// OldPath is the source path for renames and copies.
	OldPath string `json:"old_path,omitempty"`

	// Action is the kind of modification.
	Action Action `json:"action"`

	// AbsolutePath is the file's location on disk. Empty until resolved.
	AbsolutePath string `json:"-"`

	// Content holds the file text once LoadContents has run.
	Content string `json:"-"`

	// Readable is false for binary, oversized, missing, or unreadable files.
	Readable bool `json:"-"`
}

// IsNew returns true if the file was added by the change.
func (f AffectedFile) IsNew() bool {
	return f.Action.IsNew()
}

// NewAffectedFile creates an AffectedFile with a normalized path.
func NewAffectedFile(path string, action Action) AffectedFile {
	return AffectedFile{LocalPath: NormalizePath(path), Action: action}
}

// NormalizePath converts a repo-relative path to '/' separators and strips
// a leading "./".
func NormalizePath(path string) string {
	p := filepath.ToSlash(path)
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimPrefix(p, "./")
}

// Change is the unit a presubmit run inspects.
type Change struct {
	// RepoRoot is the absolute repository root directory.
	RepoRoot string `json:"repo_root"`

	// Description is the commit message or change description.
	Description string `json:"description,omitempty"`

	// Author is the author e-mail, if known.
	Author string `json:"author,omitempty"`

	// Issue is the review issue number, zero when the change was never uploaded.
	Issue int `json:"issue,omitempty"`

	// Files are the affected files in discovery order.
	Files []AffectedFile `json:"files"`
}

// New creates a Change rooted at repoRoot and resolves absolute paths.
func New(repoRoot string, files []AffectedFile) *Change {
	c := &Change{RepoRoot: repoRoot, Files: files}
	c.resolvePaths()
	return c
}

// AffectedFiles returns the files of the change, optionally without deletions.
// The returned slice is a copy.
func (c *Change) AffectedFiles(includeDeletes bool) []AffectedFile {
	out := make([]AffectedFile, 0, len(c.Files))
	for _, f := range c.Files {
		if !includeDeletes && f.Action == ActionDeleted {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Paths returns the local paths of non-deleted files.
func (c *Change) Paths() []string {
	files := c.AffectedFiles(false)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.LocalPath
	}
	return paths
}

// BugField returns the value of the first "Bug:" or "BUG=" footer in the
// description, or an empty string.
func (c *Change) BugField() string {
	for _, line := range strings.Split(c.Description, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"Bug:", "BUG=", "Fixed:"} {
			if v, ok := strings.CutPrefix(line, prefix); ok {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

func (c *Change) resolvePaths() {
	for i := range c.Files {
		if c.Files[i].AbsolutePath == "" && c.RepoRoot != "" {
			c.Files[i].AbsolutePath = filepath.Join(c.RepoRoot, filepath.FromSlash(c.Files[i].LocalPath))
		}
	}
}

// FromPaths creates a Change from an explicit path list with the same action
// for every file.
func FromPaths(repoRoot string, paths []string, action Action) *Change {
	files := make([]AffectedFile, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) && repoRoot != "" {
			if rel, err := filepath.Rel(repoRoot, p); err == nil && !strings.HasPrefix(rel, "..") {
				p = rel
			}
		}
		files = append(files, NewAffectedFile(p, action))
	}
	return New(repoRoot, files)
}
