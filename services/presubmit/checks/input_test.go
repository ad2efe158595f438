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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
)

func testChange() *change.Change {
	return change.New("/repo", []change.AffectedFile{
		change.NewAffectedFile("browser/a.cc", change.ActionAdded),
		change.NewAffectedFile("browser/gone.cc", change.ActionDeleted),
		change.NewAffectedFile("third_party/lib/x.cc", change.ActionModified),
		change.NewAffectedFile("docs/README", change.ActionModified),
		change.NewAffectedFile("ui/icon.png", change.ActionModified),
	})
}

func paths(files []change.AffectedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.LocalPath
	}
	return out
}

func TestInput_AffectedFiles(t *testing.T) {
	in := NewInput(testChange())

	assert.Len(t, in.AffectedFiles(true), 5)
	assert.NotContains(t, paths(in.AffectedFiles(false)), "browser/gone.cc")
	assert.Equal(t, "/repo", in.RepoRoot)
}

func TestInput_AffectedSourceFiles(t *testing.T) {
	in := NewInput(testChange())

	assert.Equal(t, []string{"browser/a.cc"}, paths(in.AffectedSourceFiles(nil)))

	all := in.AffectedSourceFiles(func(change.AffectedFile) bool { return true })
	assert.Len(t, all, 4)
}

func TestInput_FilterSourceFileWith(t *testing.T) {
	in := NewInput(nil)
	f := change.NewAffectedFile("build/config.gni", change.ActionModified)

	assert.False(t, in.FilterSourceFile(f))
	assert.True(t, in.FilterSourceFileWith(f, []string{`.+\.gni?$`}, nil))
	assert.False(t, in.FilterSourceFileWith(f, []string{`(`}, nil), "bad patterns reject")
}

func TestInput_WithAffectedFilesIsCopyOnWrite(t *testing.T) {
	in := NewInput(testChange())
	narrowed := in.WithAffectedFiles([]change.AffectedFile{change.NewAffectedFile("only.cc", change.ActionModified)})

	assert.Equal(t, []string{"only.cc"}, paths(narrowed.AffectedFiles(true)))
	assert.Len(t, in.AffectedFiles(true), 5, "original unchanged")

	empty := in.WithAffectedFiles(nil)
	assert.Empty(t, empty.AffectedFiles(true), "an explicit empty set hides every file")
}

func TestInput_WithPathPrefix(t *testing.T) {
	in := NewInput(testChange()).WithPathPrefix("brave/")

	got := paths(in.AffectedFiles(false))
	assert.Equal(t, "brave/browser/a.cc", got[0])
	assert.Equal(t, "brave/", in.PathPrefix())
	assert.Equal(t, "browser/a.cc", testChange().Files[0].LocalPath)
}

func TestInput_WithFilesToSkip(t *testing.T) {
	in := NewInput(nil)
	more := in.WithFilesToSkip(`win_build_output[\\/].*`)

	f := change.NewAffectedFile("win_build_output/mc/x.h", change.ActionModified)
	assert.True(t, in.FilterSourceFile(f))
	assert.False(t, more.FilterSourceFile(f))
	assert.Len(t, more.FilesToSkip, len(in.FilesToSkip)+1)
}

func TestInput_ReadFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0o644))

	c := change.FromPaths(root, []string{"a.py", "missing.py"}, change.ActionModified)
	in := NewInput(c)

	assert.Equal(t, "x = 1\n", in.ReadFile(c.Files[0]))
	assert.Empty(t, in.ReadFile(c.Files[1]))

	loaded := change.AffectedFile{LocalPath: "z.py", Content: "cached", Readable: true}
	assert.Equal(t, "cached", in.ReadFile(loaded))
}

func TestInput_ListFiles(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"a.go", "sub/b.py", ".git/config", "out/Default/gen.cc", "node_modules/x/y.js"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	in := NewInput(change.New(root, nil))
	files, err := in.ListFiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "sub/b.py"}, files)

	custom := in.WithListFiles(func(context.Context, *Input) ([]string, error) {
		return []string{"only.go"}, nil
	})
	files, err = custom.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"only.go"}, files)
}

func TestInput_WithFormatOptions(t *testing.T) {
	in := NewInput(nil)
	py := in.WithFormatOptions(FormatOptions{CheckPython: true})
	assert.True(t, py.Format.CheckPython)
	assert.False(t, in.Format.CheckPython)
}
