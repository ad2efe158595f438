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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

const chromiumHeader = "// Copyright 2024 The Chromium Authors\n" +
	"// Use of this source code is governed by a BSD-style license that can be\n" +
	"// found in the LICENSE file.\n"

// writeRepo creates files under a temporary root.
func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newInput(root string, files ...change.AffectedFile) *checks.Input {
	in := checks.NewInput(change.New(root, files))
	in.Clock = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return in
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, PanProjectChecks, reg.PanProjectNames())
	for _, name := range []string{ChangeLintsClean, SourceTreeLintsClean, PatchFormatted, ForIncludeGuards} {
		assert.True(t, reg.Has(name), name)
	}
	assert.ErrorIs(t, Register(reg), checks.ErrDuplicateCheck)
}

func TestUpstreamLicensePattern(t *testing.T) {
	p := UpstreamLicensePattern(2008)
	assert.Contains(t, p, "(2008|2007|2006)")
	assert.Contains(t, p, "The Chromium Authors")
}

func TestCheckLicense(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"good.cc":   chromiumHeader + "int x;\n",
		"old.cc":    "int y;\n",
		"new.cc":    "int z;\n",
		"future.cc": "// Copyright 2031 The Chromium Authors\n// Use of this source code is governed by a BSD-style license that can be\n// found in the LICENSE file.\n",
		"empty.cc":  "",
		"README.md": "no header\n",
	})

	t.Run("existing files warn", func(t *testing.T) {
		in := newInput(root,
			change.NewAffectedFile("good.cc", change.ActionModified),
			change.NewAffectedFile("old.cc", change.ActionModified),
			change.NewAffectedFile("future.cc", change.ActionModified),
			change.NewAffectedFile("empty.cc", change.ActionModified),
			change.NewAffectedFile("README.md", change.ActionModified),
		)
		results, err := CheckLicense(context.Background(), in)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, result.KindPromptWarning, results[0].Kind)
		assert.Equal(t, []string{"old.cc", "future.cc"}, results[0].Items)
		assert.Contains(t, results[0].Message, "License must match:\n")
	})

	t.Run("new file blocks", func(t *testing.T) {
		in := newInput(root,
			change.NewAffectedFile("old.cc", change.ActionModified),
			change.NewAffectedFile("new.cc", change.ActionAdded),
		)
		results, err := CheckLicense(context.Background(), in)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, result.KindError, results[0].Kind)
		assert.Equal(t, []string{"old.cc", "new.cc"}, results[0].Items)
	})

	t.Run("clean", func(t *testing.T) {
		in := newInput(root, change.NewAffectedFile("good.cc", change.ActionAdded))
		results, err := CheckLicense(context.Background(), in)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestValidOwnersLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", true},
		{"# comment", true},
		{"dev@example.com", true},
		{"dev@example.com  # lead", true},
		{"*", true},
		{"set noparent", true},
		{"file://ui/OWNERS", true},
		{"include //ui/OWNERS", true},
		{"per-file *.gn=build@example.com", true},
		{"per-file BUILD.gn=build@example.com,*", true},
		{"per-file *.gn=file://build/OWNERS", true},
		{"per-file *.gn=nobody", false},
		{"not an owner", false},
		{"file://", false},
		{"include", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, validOwnersLine(tt.line))
		})
	}
}

func TestCheckOwnersFormat(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"ui/OWNERS":  "dev@example.com\nbogus line\n",
		"net/OWNERS": "set noparent\n*\n",
	})
	in := newInput(root,
		change.NewAffectedFile("ui/OWNERS", change.ActionModified),
		change.NewAffectedFile("net/OWNERS", change.ActionAdded),
	)

	results, err := CheckOwnersFormat(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)
	assert.Equal(t, []string{"ui/OWNERS:2: bogus line"}, results[0].Items)
}

func TestCheckOwners(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"ui/OWNERS":          "dev@example.com\n",
		"ui/views/button.cc": "",
		"net/socket.cc":      "",
	})
	in := newInput(root,
		change.NewAffectedFile("ui/views/button.cc", change.ActionModified),
		change.NewAffectedFile("net/socket.cc", change.ActionModified),
	)

	results, err := CheckOwners(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"net/socket.cc"}, results[0].Items)

	require.NoError(t, os.WriteFile(filepath.Join(root, "OWNERS"), []byte("*\n"), 0o644))
	results, err = CheckOwners(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAuthorized(t *testing.T) {
	authors := "# Names\nJane Dev <jane@example.com>\nCorp <*@corp.example>\n"

	assert.True(t, authorized(authors, "jane@example.com"))
	assert.True(t, authorized(authors, "JANE@example.com"))
	assert.True(t, authorized(authors, "anyone@corp.example"))
	assert.False(t, authorized(authors, "mallory@example.com"))
}

func TestCheckAuthorizedAuthor(t *testing.T) {
	root := writeRepo(t, map[string]string{"AUTHORS": "Jane Dev <jane@example.com>\n"})

	in := newInput(root)
	in.Change.Author = "jane@example.com"
	results, err := CheckAuthorizedAuthor(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, results)

	in.Change.Author = "mallory@example.com"
	results, err = CheckAuthorizedAuthor(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindPromptWarning, results[0].Kind)
	assert.Contains(t, results[0].Message, "mallory@example.com is not in AUTHORS file")

	noAuthors := newInput(t.TempDir())
	noAuthors.Change.Author = "mallory@example.com"
	results, err = CheckAuthorizedAuthor(context.Background(), noAuthors)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheckChangeWasUploaded(t *testing.T) {
	in := newInput("/repo")
	results, err := CheckChangeWasUploaded(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)

	in.Change.Issue = 12345
	results, err = CheckChangeWasUploaded(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheckChangeHasBugField(t *testing.T) {
	in := newInput("/repo")
	in.Change.Description = "Fix crash\n\nBug: 1234\n"
	results, err := CheckChangeHasBugField(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, results)

	in.Change.Description = "Fix crash"
	results, err = CheckChangeHasBugField(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindNotify, results[0].Kind)
}

func TestCheckTreeIsOpen(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		wantKind []result.Kind
	}{
		{"open", `{"can_commit_freely": true, "message": "open"}`, http.StatusOK, nil},
		{"closed", `{"can_commit_freely": false, "message": "closed for maintenance"}`, http.StatusOK, []result.Kind{result.KindError}},
		{"server error", ``, http.StatusInternalServerError, []result.Kind{result.KindError}},
		{"bad json", `{`, http.StatusOK, []result.Kind{result.KindError}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			in := newInput("/repo")
			in.TreeStatusURL = srv.URL
			in.HTTPClient = srv.Client()

			results, err := CheckTreeIsOpen(context.Background(), in)
			require.NoError(t, err)
			var kinds []result.Kind
			for _, r := range results {
				kinds = append(kinds, r.Kind)
			}
			assert.Equal(t, tt.wantKind, kinds)
		})
	}

	t.Run("disabled without url", func(t *testing.T) {
		results, err := CheckTreeIsOpen(context.Background(), newInput("/repo"))
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("closed message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"can_commit_freely": false, "message": "red bots"}`))
		}))
		defer srv.Close()

		in := newInput("/repo")
		in.TreeStatusURL = srv.URL
		results, err := CheckTreeIsOpen(context.Background(), in)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Message, "red bots")
	})
}
