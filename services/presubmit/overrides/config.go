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
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/canned"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
)

// ErrInvalidConfig indicates an override configuration failed validation.
var ErrInvalidConfig = errors.New("invalid override config")

// Config describes every adjustment made to the host and project checks.
type Config struct {
	// Blocklist maps a check name to path regexes whose files that check
	// never sees. Applies to checks of that name in both registries.
	Blocklist map[string][]string `yaml:"blocklist" validate:"dive,keys,required,endkeys,dive,required"`

	// DisabledCannedChecks are host checks replaced by no-ops. Each must exist.
	DisabledCannedChecks []string `yaml:"disabled_canned_checks" validate:"dive,required"`

	// DisabledProjectChecks are project checks replaced by no-ops when
	// registered.
	DisabledProjectChecks []string `yaml:"disabled_project_checks" validate:"dive,required"`

	// ForceErrorProjectChecks escalate their warnings to errors when registered.
	ForceErrorProjectChecks []string `yaml:"force_error_project_checks" validate:"dive,required"`

	// FormatReplacements rewrite CheckPatchFormatted messages, in order.
	FormatReplacements []checks.Replacement `yaml:"format_replacements" validate:"dive"`

	// IncludeGuardPrefix is prepended to paths seen by CheckForIncludeGuards.
	IncludeGuardPrefix string `yaml:"include_guard_prefix"`

	// ExtraFilesToSkip extend the default files-to-skip of every check.
	ExtraFilesToSkip []string `yaml:"extra_files_to_skip" validate:"dive,required"`
}

// DefaultConfig returns the downstream defaults.
func DefaultConfig() Config {
	return Config{
		Blocklist: map[string][]string{},
		DisabledCannedChecks: []string{
			canned.License,
			canned.OwnersFormat,
			canned.Owners,
			canned.AuthorizedAuthor,
			canned.ChangeWasUploaded,
			canned.ChangeHasBugField,
			canned.TreeIsOpen,
		},
		DisabledProjectChecks: []string{
			"CheckSecurityOwners",
			"CheckStrings",
			"CheckPydepsNeedsUpdating",
			"CheckNoProductIconsAddedToPublicRepo",
			"CheckGoogleSupportAnswerUrlOnUpload",
			"CheckHardcodedGoogleHostsInLowerLayers",
		},
		ForceErrorProjectChecks: []string{
			"CheckNewHeaderWithoutGnChangeOnUpload",
		},
		FormatReplacements: []checks.Replacement{
			{Old: " format --", New: " format -- --"},
			{Old: "git cl format", New: "npm run format"},
			{Old: "gn format", New: "npm run format"},
			{Old: "rust-fmt", New: "rust"},
			{Old: "swift-format", New: "swift"},
		},
		IncludeGuardPrefix: "brave/",
		ExtraFilesToSkip:   []string{`win_build_output[\\/].*`},
	}
}

// Validate checks struct constraints and compiles every path pattern.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name, patterns := range c.Blocklist {
		if err := change.ValidatePatterns(patterns); err != nil {
			return fmt.Errorf("%w: blocklist %s: %v", ErrInvalidConfig, name, err)
		}
	}
	if err := change.ValidatePatterns(c.ExtraFilesToSkip); err != nil {
		return fmt.Errorf("%w: extra_files_to_skip: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadBlocklist reads a YAML document mapping check names to path regexes.
//
// Example:
//
//	CheckChangeLintsClean:
//	  - 'third_party/.*'
//	CheckLicense:
//	  - 'components/test/data/.*'
func LoadBlocklist(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blocklist: %w", err)
	}
	blocklist := make(map[string][]string)
	if err := yaml.Unmarshal(data, &blocklist); err != nil {
		return nil, fmt.Errorf("%w: parsing blocklist %s: %v", ErrInvalidConfig, path, err)
	}
	return blocklist, nil
}

// MergeBlocklist appends the patterns of extra to the config's blocklist.
func (c *Config) MergeBlocklist(extra map[string][]string) {
	if c.Blocklist == nil {
		c.Blocklist = make(map[string][]string, len(extra))
	}
	for name, patterns := range extra {
		c.Blocklist[name] = append(c.Blocklist[name], patterns...)
	}
}
