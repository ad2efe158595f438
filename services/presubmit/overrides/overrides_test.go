// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package overrides

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/canned"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/lint"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/project"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

type fakeLinter struct {
	got  []string
	with []lint.LintIssue
}

func (f *fakeLinter) LintFiles(_ context.Context, paths []string) ([]*lint.LintResult, error) {
	f.got = append([]string(nil), paths...)
	var out []*lint.LintResult
	for _, p := range paths {
		out = append(out, &lint.LintResult{FilePath: p, LinterAvailable: true, Warnings: f.with})
	}
	return out, nil
}

type fakeFormatter struct {
	opts lint.FormatOptions
}

func (f *fakeFormatter) CheckFormat(_ context.Context, paths []string, opts lint.FormatOptions) (*lint.FormatReport, error) {
	f.opts = opts
	return &lint.FormatReport{
		Unformatted: map[string][]string{"--js": paths},
		Flags:       []string{"--js"},
	}, nil
}

func setup(t *testing.T, cfg Config) (*checks.Registry, *checks.Registry) {
	t.Helper()
	host := canned.NewRegistry()
	v := license.NewValidator(license.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	proj := project.NewRegistry(v)
	require.NoError(t, Apply(proj, host, cfg))
	return proj, host
}

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

func newInput(root string, host *checks.Registry, files ...change.AffectedFile) *checks.Input {
	in := checks.NewInput(change.New(root, files))
	in.Canned = host
	return in
}

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad blocklist regex", func(c *Config) { c.Blocklist = map[string][]string{"CheckLicense": {"("}} }},
		{"empty blocklist pattern", func(c *Config) { c.Blocklist = map[string][]string{"CheckLicense": {""}} }},
		{"empty replacement", func(c *Config) { c.FormatReplacements = []checks.Replacement{{Old: "", New: "x"}} }},
		{"bad extra skip", func(c *Config) { c.ExtraFilesToSkip = []string{"[a-"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			assert.ErrorIs(t, Apply(checks.NewRegistry("p"), canned.NewRegistry(), cfg), ErrInvalidConfig)
		})
	}
}

func TestApply_DisablesHostChecks(t *testing.T) {
	_, host := setup(t, DefaultConfig())
	in := newInput("/repo", host)

	for _, name := range canned.PanProjectChecks {
		results, err := host.Call(context.Background(), name, in)
		require.NoError(t, err, name)
		assert.Empty(t, results, name)
	}
}

func TestApply_MissingHostCheck(t *testing.T) {
	err := Apply(nil, checks.NewRegistry("canned"), DefaultConfig())
	assert.ErrorIs(t, err, checks.ErrCheckNotFound)
}

func TestApply_PatchFormatted(t *testing.T) {
	proj, host := setup(t, DefaultConfig())
	formatter := &fakeFormatter{}
	in := newInput("/repo", host, change.NewAffectedFile("ui/app.ts", change.ActionModified))
	in.Formatter = formatter

	results, err := proj.Call(context.Background(), project.PatchFormatted, in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)
	assert.Equal(t, "Your patch is not formatted, please run npm run format -- --js", results[0].Message)
	assert.True(t, formatter.opts.CheckPython)
}

func TestApply_ChangeLintsCleanForcedError(t *testing.T) {
	proj, host := setup(t, DefaultConfig())
	linter := &fakeLinter{with: []lint.LintIssue{{File: "a.py", Line: 1, Message: "bad"}}}
	in := newInput("/repo", host, change.NewAffectedFile("a.py", change.ActionModified))
	in.Linter = linter

	results, err := proj.Call(context.Background(), project.ChangeLintsClean, in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)
}

func TestApply_SourceTreeLintsOnlyAffectedFiles(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"a.py":         "x = 1\n",
		"untouched.py": "y = 2\n",
	})
	_, host := setup(t, DefaultConfig())
	linter := &fakeLinter{with: []lint.LintIssue{{File: "a.py", Line: 1, Message: "bad"}}}
	in := newInput(root, host, change.NewAffectedFile("a.py", change.ActionModified))
	in.Linter = linter

	results, err := host.Call(context.Background(), canned.SourceTreeLintsClean, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, linter.got)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)
}

func TestApply_IncludeGuardPrefix(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"ui/good.h": "#ifndef BRAVE_UI_GOOD_H_\n#define BRAVE_UI_GOOD_H_\n#endif  // BRAVE_UI_GOOD_H_\n",
	})
	proj, host := setup(t, DefaultConfig())
	in := newInput(root, host, change.NewAffectedFile("ui/good.h", change.ActionModified))

	results, err := proj.Call(context.Background(), project.ForIncludeGuards, in)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestApply_Blocklist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blocklist = map[string][]string{
		project.ChangeLintsClean: {`vendor_a/.*`, `vendor_b/`},
		"CheckDoesNotExist":      {`x/.*`},
	}
	proj, host := setup(t, cfg)
	linter := &fakeLinter{}
	in := newInput("/repo", host,
		change.NewAffectedFile("vendor_a/a.py", change.ActionModified),
		change.NewAffectedFile("vendor_b/b.py", change.ActionModified),
		change.NewAffectedFile("src/c.py", change.ActionModified),
	)
	in.Linter = linter

	_, err := proj.Call(context.Background(), project.ChangeLintsClean, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/c.py"}, linter.got)
}

func TestApply_ExtraFilesToSkip(t *testing.T) {
	root := writeRepo(t, map[string]string{"win_build_output/mc/gen.h": "int x;\n"})
	proj, host := setup(t, DefaultConfig())
	in := newInput(root, host, change.NewAffectedFile("win_build_output/mc/gen.h", change.ActionAdded))

	results, err := proj.Call(context.Background(), project.License, in)
	require.NoError(t, err)
	assert.Empty(t, results)

	bare := project.NewRegistry(nil)
	results, err = bare.Call(context.Background(), project.License, in)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestApply_ProjectChecks(t *testing.T) {
	host := canned.NewRegistry()
	proj := project.NewRegistry(nil)
	proj.MustRegister("CheckStrings", func(context.Context, *checks.Input) ([]result.Result, error) {
		return []result.Result{result.NewError("screenshots missing")}, nil
	})
	require.NoError(t, Apply(proj, host, DefaultConfig()))

	in := newInput("/repo", host, change.NewAffectedFile("ui/new.h", change.ActionAdded))

	results, err := proj.Call(context.Background(), "CheckStrings", in)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = proj.Call(context.Background(), project.NewHeaderWithoutGnChange, in)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, result.KindError, results[0].Kind)
}

func TestLoadBlocklist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CheckLicense:\n  - 'components/test/data/.*'\nCheckChangeLintsClean:\n  - 'third_party/.*'\n"), 0o644))

	blocklist, err := LoadBlocklist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"components/test/data/.*"}, blocklist["CheckLicense"])

	cfg := DefaultConfig()
	cfg.Blocklist = map[string][]string{"CheckLicense": {"a/.*"}}
	cfg.MergeBlocklist(blocklist)
	assert.Equal(t, []string{"a/.*", "components/test/data/.*"}, cfg.Blocklist["CheckLicense"])
	assert.Len(t, cfg.Blocklist, 2)

	_, err = LoadBlocklist(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- not a map\n"), 0o644))
	_, err = LoadBlocklist(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
