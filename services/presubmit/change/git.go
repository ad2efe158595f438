// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Mode selects which files git reports as changed.
type Mode string

const (
	// ModeDiff compares the working tree against the index.
	ModeDiff Mode = "diff"

	// ModeStaged compares the index against HEAD.
	ModeStaged Mode = "staged"

	// ModeCommit lists the files of a single commit.
	ModeCommit Mode = "commit"

	// ModeBranch lists files changed since the merge base with a branch.
	ModeBranch Mode = "branch"

	// ModeFiles uses an explicit path list.
	ModeFiles Mode = "files"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeDiff, ModeStaged, ModeCommit, ModeBranch, ModeFiles:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// GitOptions configures change detection.
type GitOptions struct {
	// Mode selects the comparison.
	Mode Mode

	// Revision is the commit for ModeCommit or the base branch for ModeBranch.
	Revision string

	// Files is the explicit list for ModeFiles.
	Files []string
}

// commandFunc runs git with args in dir and returns stdout.
type commandFunc func(ctx context.Context, dir string, args ...string) (string, error)

// GitClient builds Changes from a git checkout.
//
// Thread Safety: Safe for concurrent use.
type GitClient struct {
	workDir string
	run     commandFunc
	logger  *slog.Logger
}

// GitOption configures a GitClient.
type GitOption func(*GitClient)

// WithGitLogger sets the logger.
func WithGitLogger(logger *slog.Logger) GitOption {
	return func(g *GitClient) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// withCommand replaces the git executor. Used by tests.
func withCommand(fn commandFunc) GitOption {
	return func(g *GitClient) {
		g.run = fn
	}
}

// NewGitClient creates a GitClient for the given working directory.
//
// Description:
//
//	The working directory may be any directory inside the checkout; the
//	repository root is resolved with `git rev-parse --show-toplevel`.
//
// Inputs:
//
//	workDir - Directory inside the repository. Must not be empty.
//	opts - Optional configuration.
//
// Outputs:
//
//	*GitClient - The client.
func NewGitClient(workDir string, opts ...GitOption) *GitClient {
	g := &GitClient{
		workDir: workDir,
		run:     execGit,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RepoRoot returns the top-level directory of the repository.
func (g *GitClient) RepoRoot(ctx context.Context) (string, error) {
	out, err := g.run(ctx, g.workDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotGitRepo, err)
	}
	return strings.TrimSpace(out), nil
}

// Change returns the change described by opts.
//
// Description:
//
//	Lists affected files with `git diff --name-status` (or `git show` for a
//	single commit) and fills Description and Author from `git log -1`.
//	Metadata lookups that fail are logged and left empty.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	opts - Mode and revision.
//
// Outputs:
//
//	*Change - Files in git's output order, rooted at the repository root.
//	error - Non-nil if git fails or the mode is invalid.
func (g *GitClient) Change(ctx context.Context, opts GitOptions) (*Change, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	root, err := g.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}

	files, err := g.changedFiles(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	c := New(root, files)

	rev := "HEAD"
	if opts.Mode == ModeCommit {
		rev = opts.Revision
	}
	if out, err := g.run(ctx, root, "log", "-1", "--format=%ae%n%B", rev); err == nil {
		author, body, _ := strings.Cut(out, "\n")
		c.Author = strings.TrimSpace(author)
		c.Description = strings.TrimSpace(body)
	} else {
		g.logger.Debug("reading change metadata failed", slog.String("rev", rev), slog.String("error", err.Error()))
	}
	if out, err := g.run(ctx, root, "config", "--get", "branch."+g.currentBranch(ctx, root)+".gerritissue"); err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(out)); convErr == nil {
			c.Issue = n
		}
	}

	g.logger.Debug("change detected",
		slog.String("mode", string(opts.Mode)),
		slog.Int("files", len(c.Files)),
	)
	return c, nil
}

func (g *GitClient) changedFiles(ctx context.Context, root string, opts GitOptions) ([]AffectedFile, error) {
	switch opts.Mode {
	case ModeFiles:
		return FromPaths(root, opts.Files, ActionModified).Files, nil
	case ModeDiff, "":
		return g.nameStatus(ctx, root, "diff", "--name-status")
	case ModeStaged:
		return g.nameStatus(ctx, root, "diff", "--cached", "--name-status")
	case ModeCommit:
		if opts.Revision == "" {
			return nil, fmt.Errorf("%w: commit", ErrMissingRevision)
		}
		return g.nameStatus(ctx, root, "show", "--name-status", "--format=", opts.Revision)
	case ModeBranch:
		if opts.Revision == "" {
			return nil, fmt.Errorf("%w: branch", ErrMissingRevision)
		}
		if _, err := g.run(ctx, root, "rev-parse", "--verify", opts.Revision); err != nil {
			return nil, fmt.Errorf("branch %q not found: %w", opts.Revision, err)
		}
		return g.nameStatus(ctx, root, "diff", "--name-status", opts.Revision+"...HEAD")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}

func (g *GitClient) currentBranch(ctx context.Context, root string) string {
	out, err := g.run(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "HEAD"
	}
	return strings.TrimSpace(out)
}

func (g *GitClient) nameStatus(ctx context.Context, root string, args ...string) ([]AffectedFile, error) {
	out, err := g.run(ctx, root, args...)
	if err != nil {
		return nil, err
	}
	return ParseNameStatus(out)
}

// ParseNameStatus parses `git diff --name-status` output.
//
// Lines look like "M\tpath" or "R087\told\tnew". Blank and malformed lines
// are skipped.
func ParseNameStatus(output string) ([]AffectedFile, error) {
	var files []AffectedFile

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}

		f := NewAffectedFile(parts[1], ParseAction(strings.TrimSpace(parts[0])))
		if (f.Action == ActionRenamed || f.Action == ActionCopied) && len(parts) >= 3 {
			f.OldPath = NormalizePath(parts[1])
			f.LocalPath = NormalizePath(parts[2])
		}
		files = append(files, f)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsing git output: %w", err)
	}
	return files, nil
}

func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
