// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the presubmit CLI configuration.
package config

import (
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/overrides"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/telemetry"
)

// FileName is the configuration file looked up in the repository root.
const FileName = ".presubmit.yaml"

// Environment overrides.
const (
	EnvLogLevel      = "PRESUBMIT_LOG_LEVEL"
	EnvTreeStatusURL = "PRESUBMIT_TREE_STATUS_URL"
)

// PresubmitConfig is the root of .presubmit.yaml.
type PresubmitConfig struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogDir enables file logging.
	LogDir string `yaml:"log_dir,omitempty"`

	// Strict makes prompt warnings fail the run.
	Strict bool `yaml:"strict"`

	// TreeStatusURL is queried by CheckTreeIsOpen when that check runs.
	TreeStatusURL string `yaml:"tree_status_url,omitempty" validate:"omitempty,url"`

	// BlocklistFile is merged into Overrides.Blocklist. Relative paths are
	// resolved against the repository root.
	BlocklistFile string `yaml:"blocklist_file,omitempty"`

	// License configures the project license check.
	License LicenseConfig `yaml:"license"`

	// Lint configures external tools.
	Lint LintConfig `yaml:"lint"`

	// Overrides adapts the host and project checks.
	Overrides overrides.Config `yaml:"overrides"`

	// Telemetry configures exporters.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// LicenseConfig configures the header validator.
type LicenseConfig struct {
	// FirstYear is the earliest accepted copyright year.
	FirstYear int `yaml:"first_year" validate:"gte=1970"`

	// Holder is the copyright holder.
	Holder string `yaml:"holder" validate:"required"`

	// KeyLine overrides the pre-filter line. Empty keeps the default.
	KeyLine string `yaml:"key_line,omitempty"`
}

// LintConfig configures linters and formatters.
type LintConfig struct {
	// Concurrency bounds parallel linter runs. Zero uses the default.
	Concurrency int `yaml:"concurrency" validate:"gte=0,lte=64"`

	// Disabled turns off linting and format checks entirely.
	Disabled bool `yaml:"disabled"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() PresubmitConfig {
	return PresubmitConfig{
		LogLevel: "info",
		License: LicenseConfig{
			FirstYear: license.FirstYear,
			Holder:    license.DefaultHolder,
		},
		Overrides: overrides.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
	}
}
