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
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// =============================================================================
// LICENSE
// =============================================================================

// upstreamFirstYear is the earliest year the upstream header accepts.
const upstreamFirstYear = 2006

const upstreamLicenseTemplate = `.*? Copyright (\(c\) )?%s The Chromium Authors(\. All rights reserved\.)?\r?\n` +
	`.*? Use of this source code is governed by a BSD-style license that can be\r?\n` +
	`.*? found in the LICENSE file\.(?: \*/)?\r?\n`

// UpstreamLicensePattern returns the upstream BSD header pattern for year.
func UpstreamLicensePattern(year int) string {
	years := make([]string, 0, year-upstreamFirstYear+1)
	for y := year; y >= upstreamFirstYear; y-- {
		years = append(years, fmt.Sprint(y))
	}
	return fmt.Sprintf(upstreamLicenseTemplate, "("+strings.Join(years, "|")+")")
}

// CheckLicense verifies the upstream BSD license header on affected source
// files. Any new file without it blocks; otherwise the result is a warning.
func CheckLicense(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	pattern := UpstreamLicensePattern(in.Now().Year())
	re, err := regexp2.Compile(pattern, regexp2.Multiline)
	if err != nil {
		return nil, fmt.Errorf("compiling license pattern: %w", err)
	}
	re.MatchTimeout = 5 * time.Second

	var bad []string
	badNew := false
	for _, f := range in.AffectedSourceFiles(nil) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := in.ReadFile(f)
		if content == "" {
			continue
		}
		ok, err := re.MatchString(content)
		if err != nil {
			return nil, fmt.Errorf("matching license in %s: %w", f.LocalPath, err)
		}
		if ok {
			continue
		}
		bad = append(bad, f.LocalPath)
		if f.IsNew() {
			badNew = true
		}
	}
	if len(bad) == 0 {
		return nil, nil
	}

	msg := "License must match:\n" + pattern + "\nFound a bad license header in these files:"
	if badNew {
		return []result.Result{result.NewError(msg, bad...)}, nil
	}
	return []result.Result{result.NewPromptWarning(msg, bad...)}, nil
}

// =============================================================================
// OWNERS
// =============================================================================

const ownersFile = "OWNERS"

var (
	ownersEmail   = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
	ownersPerFile = regexp.MustCompile(`^per-file\s+([^=\s]+)\s*=\s*(.+)$`)
)

// validOwnersDirective reports whether a directive may appear on its own
// line or on the right side of a per-file rule.
func validOwnersDirective(d string) bool {
	switch {
	case d == "*", d == "set noparent":
		return true
	case strings.HasPrefix(d, "file://"):
		return len(d) > len("file://")
	case ownersEmail.MatchString(d):
		return true
	}
	return false
}

// validOwnersLine reports whether one OWNERS line is well formed.
func validOwnersLine(line string) bool {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, "include ") {
		return strings.TrimSpace(strings.TrimPrefix(line, "include ")) != ""
	}
	if m := ownersPerFile.FindStringSubmatch(line); m != nil {
		for _, d := range strings.Split(m[2], ",") {
			if !validOwnersDirective(strings.TrimSpace(d)) {
				return false
			}
		}
		return true
	}
	return validOwnersDirective(line)
}

// CheckOwnersFormat validates the syntax of modified OWNERS files.
func CheckOwnersFormat(_ context.Context, in *checks.Input) ([]result.Result, error) {
	var bad []string
	for _, f := range in.AffectedFiles(false) {
		if path.Base(f.LocalPath) != ownersFile {
			continue
		}
		scanner := bufio.NewScanner(strings.NewReader(in.ReadFile(f)))
		for n := 1; scanner.Scan(); n++ {
			if !validOwnersLine(scanner.Text()) {
				bad = append(bad, fmt.Sprintf("%s:%d: %s", f.LocalPath, n, strings.TrimSpace(scanner.Text())))
			}
		}
	}
	if len(bad) == 0 {
		return nil, nil
	}
	return []result.Result{result.NewError("Invalid OWNERS file syntax:", bad...)}, nil
}

// CheckOwners warns about affected files no OWNERS file covers.
func CheckOwners(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	if in.RepoRoot == "" {
		return nil, nil
	}
	prefix := in.PathPrefix()
	found := make(map[string]bool)

	var uncovered []string
	for _, f := range in.AffectedFiles(false) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local := strings.TrimPrefix(f.LocalPath, prefix)
		if !hasOwners(in.RepoRoot, path.Dir(local), found) {
			uncovered = append(uncovered, f.LocalPath)
		}
	}
	if len(uncovered) == 0 {
		return nil, nil
	}
	return []result.Result{result.NewPromptWarning("Missing OWNERS coverage for these files:", uncovered...)}, nil
}

// hasOwners walks from dir to the repository root looking for an OWNERS
// file. Results are memoized in found.
func hasOwners(root, dir string, found map[string]bool) bool {
	var visited []string
	covered := false
	for {
		if v, ok := found[dir]; ok {
			covered = v
			break
		}
		visited = append(visited, dir)
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir), ownersFile)); err == nil {
			covered = true
			break
		}
		if dir == "." || dir == "/" || dir == "" {
			break
		}
		dir = path.Dir(dir)
	}
	for _, d := range visited {
		found[d] = covered
	}
	return covered
}

// =============================================================================
// CHANGE METADATA
// =============================================================================

const authorsFile = "AUTHORS"

var authorsEmail = regexp.MustCompile(`<([^>]+)>`)

// authorized reports whether email appears in the AUTHORS content. Entries
// of the form "*@example.com" admit a whole domain.
func authorized(authors, email string) bool {
	email = strings.ToLower(email)
	for _, m := range authorsEmail.FindAllStringSubmatch(authors, -1) {
		entry := strings.ToLower(strings.TrimSpace(m[1]))
		if entry == email {
			return true
		}
		if strings.HasPrefix(entry, "*@") && strings.HasSuffix(email, entry[1:]) {
			return true
		}
	}
	return false
}

// CheckAuthorizedAuthor warns when the change author is not listed in the
// repository AUTHORS file. Changes without a known author, and repositories
// without an AUTHORS file, pass.
func CheckAuthorizedAuthor(_ context.Context, in *checks.Input) ([]result.Result, error) {
	if in.Change == nil || in.Change.Author == "" || in.RepoRoot == "" {
		return nil, nil
	}
	content, ok := change.ReadText(filepath.Join(in.RepoRoot, authorsFile))
	if !ok {
		return nil, nil
	}
	if authorized(content, in.Change.Author) {
		return nil, nil
	}
	return []result.Result{result.NewPromptWarning(fmt.Sprintf(
		"%s is not in %s file. If you are a new contributor, add yourself to %s.",
		in.Change.Author, authorsFile, authorsFile))}, nil
}

// CheckChangeWasUploaded blocks a change that has no review issue.
func CheckChangeWasUploaded(_ context.Context, in *checks.Input) ([]result.Result, error) {
	if in.Change != nil && in.Change.Issue != 0 {
		return nil, nil
	}
	return []result.Result{result.NewError("Issue wasn't uploaded. Please upload first.")}, nil
}

// CheckChangeHasBugField suggests a bug reference when the description has
// none.
func CheckChangeHasBugField(_ context.Context, in *checks.Input) ([]result.Result, error) {
	if in.Change != nil && in.Change.BugField() != "" {
		return nil, nil
	}
	return []result.Result{result.NewNotify(
		"If this change has an associated bug, add Bug: [bug number] or Fixed: [bug number].")}, nil
}
