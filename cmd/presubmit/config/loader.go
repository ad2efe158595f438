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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/overrides"
)

// ErrInvalidConfig indicates the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid presubmit config")

// Load reads the configuration.
//
// Description:
//
//	When path is empty, <repoRoot>/.presubmit.yaml is used if it exists,
//	otherwise the defaults. Fields missing from the file keep their default
//	values. Environment overrides are applied last, then the result is
//	validated. A blocklist file is merged into the override blocklist.
//
// Inputs:
//
//	path - Explicit config file. Must exist when non-empty.
//	repoRoot - Repository root for the default lookup and relative paths.
//
// Outputs:
//
//	PresubmitConfig - The merged configuration.
//	error - Read, parse, or ErrInvalidConfig errors.
func Load(path, repoRoot string) (PresubmitConfig, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit && repoRoot != "" {
		path = filepath.Join(repoRoot, FileName)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.BlocklistFile != "" {
		blPath := cfg.BlocklistFile
		if !filepath.IsAbs(blPath) && repoRoot != "" {
			blPath = filepath.Join(repoRoot, blPath)
		}
		blocklist, err := overrides.LoadBlocklist(blPath)
		if err != nil {
			return cfg, err
		}
		cfg.Overrides.MergeBlocklist(blocklist)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks struct tags, then the override config.
func (c PresubmitConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Overrides.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func applyEnv(cfg *PresubmitConfig) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvTreeStatusURL); v != "" {
		cfg.TreeStatusURL = v
	}
}

// Write saves cfg as YAML, creating parent directories.
func Write(path string, cfg PresubmitConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
