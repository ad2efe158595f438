// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig_Valid(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, license.FirstYear, cfg.License.FirstYear)
	assert.Equal(t, "brave/", cfg.Overrides.IncludeGuardPrefix)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTreeStatusURL, "")
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Overrides.DisabledCannedChecks, cfg.Overrides.DisabledCannedChecks)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RepoFileMergesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTreeStatusURL, "")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
strict: true
license:
  holder: Example Corp
overrides:
  include_guard_prefix: example/
`)

	cfg, err := Load("", root)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "Example Corp", cfg.License.Holder)
	assert.Equal(t, license.FirstYear, cfg.License.FirstYear)
	assert.Equal(t, "example/", cfg.Overrides.IncludeGuardPrefix)
	assert.NotEmpty(t, cfg.Overrides.FormatReplacements)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTreeStatusURL, "https://status.example.com/current?format=json")

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://status.example.com/current?format=json", cfg.TreeStatusURL)
}

func TestLoad_BlocklistFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTreeStatusURL, "")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "blocklist_file: presubmit/blocklist.yaml\n")
	writeFile(t, filepath.Join(root, "presubmit", "blocklist.yaml"), "CheckLicense:\n  - 'test/data/.*'\n")

	cfg, err := Load("", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"test/data/.*"}, cfg.Overrides.Blocklist["CheckLicense"])
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvTreeStatusURL, "")
	tests := []struct {
		name    string
		content string
		env     string
	}{
		{"bad yaml", "strict: [\n", ""},
		{"bad log level", "log_level: loud\n", ""},
		{"bad tree url", "tree_status_url: not a url\n", ""},
		{"bad first year", "license:\n  first_year: 12\n", ""},
		{"empty holder", "license:\n  holder: ''\n", ""},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n", ""},
		{"bad blocklist regex", "overrides:\n  blocklist:\n    CheckLicense: ['(']\n", ""},
		{"bad env log level", "", "verbose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tt.env)
			root := t.TempDir()
			writeFile(t, filepath.Join(root, FileName), tt.content)

			_, err := Load("", root)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTreeStatusURL, "")
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := DefaultConfig()
	cfg.Strict = true

	require.NoError(t, Write(path, cfg))
	loaded, err := Load(path, "")
	require.NoError(t, err)
	assert.True(t, loaded.Strict)
	assert.Equal(t, cfg.Overrides.FormatReplacements, loaded.Overrides.FormatReplacements)
}
