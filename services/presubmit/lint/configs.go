// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// DEFAULT CONFIGURATIONS
// =============================================================================

// DefaultGoConfig runs golangci-lint.
var DefaultGoConfig = LinterConfig{
	Language: "go",
	Command:  "golangci-lint",
	Args: []string{
		"run",
		"--out-format=json",
		"--issues-exit-code=0",
		"--timeout=60s",
	},
	Extensions: []string{".go"},
	Timeout:    60 * time.Second,
}

// DefaultPythonConfig runs ruff check.
var DefaultPythonConfig = LinterConfig{
	Language: "python",
	Command:  "ruff",
	Args: []string{
		"check",
		"--output-format=json",
		"--exit-zero",
	},
	Extensions: []string{".py", ".pyi"},
	Timeout:    20 * time.Second,
}

// DefaultTSConfig runs eslint on TypeScript.
var DefaultTSConfig = LinterConfig{
	Language: "typescript",
	Command:  "eslint",
	Args: []string{
		"--format=json",
		"--no-error-on-unmatched-pattern",
	},
	Extensions: []string{".ts", ".tsx", ".mts", ".cts"},
	Timeout:    60 * time.Second,
}

// DefaultJSConfig runs eslint on JavaScript.
var DefaultJSConfig = LinterConfig{
	Language: "javascript",
	Command:  "eslint",
	Args: []string{
		"--format=json",
		"--no-error-on-unmatched-pattern",
	},
	Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
	Timeout:    60 * time.Second,
}

// =============================================================================
// CONFIG REGISTRY
// =============================================================================

// ConfigRegistry maps languages and extensions to linter configurations.
//
// Thread Safety: Safe for concurrent use.
type ConfigRegistry struct {
	mu           sync.RWMutex
	configs      map[string]*LinterConfig
	extensionMap map[string]string
}

// NewConfigRegistry creates a registry with the default linters.
func NewConfigRegistry() *ConfigRegistry {
	r := &ConfigRegistry{
		configs:      make(map[string]*LinterConfig),
		extensionMap: make(map[string]string),
	}
	r.Register(&DefaultGoConfig)
	r.Register(&DefaultPythonConfig)
	r.Register(&DefaultTSConfig)
	r.Register(&DefaultJSConfig)
	return r
}

// Register adds or replaces the configuration for config.Language.
func (r *ConfigRegistry) Register(config *LinterConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[config.Language] = config.Clone()
	for _, ext := range config.Extensions {
		r.extensionMap[strings.ToLower(ext)] = config.Language
	}
}

// Get returns a copy of the configuration for a language, or nil.
func (r *ConfigRegistry) Get(language string) *LinterConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, ok := r.configs[language]
	if !ok {
		return nil
	}
	return config.Clone()
}

// LanguageFor returns the language handling the file's extension, or "".
func (r *ConfigRegistry) LanguageFor(filePath string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extensionMap[strings.ToLower(filepath.Ext(filePath))]
}

// Languages returns the registered languages, sorted.
func (r *ConfigRegistry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.configs))
	for lang := range r.configs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// SetAvailable records whether a language's linter is installed.
func (r *ConfigRegistry) SetAvailable(language string, available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if config, ok := r.configs[language]; ok {
		config.Available = available
	}
}
