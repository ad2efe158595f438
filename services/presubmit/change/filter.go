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
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// =============================================================================
// DEFAULT PATH RULES
// =============================================================================

// DefaultFilesToCheck matches the source files checks inspect by default.
var DefaultFilesToCheck = []string{
	// C++ and friends
	`.+\.c$`, `.+\.cc$`, `.+\.cpp$`, `.+\.h$`, `.+\.m$`, `.+\.mm$`,
	`.+\.inl$`, `.+\.asm$`, `.+\.hxx$`, `.+\.hpp$`, `.+\.s$`, `.+\.S$`,
	// Scripts
	`.+\.js$`, `.+\.ts$`, `.+\.py$`, `.+\.sh$`, `.+\.rb$`, `.+\.pl$`,
	`.+\.pm$`,
	// Other
	`.+\.java$`, `.+\.mk$`, `.+\.am$`, `.+\.css$`, `.+\.mojom$`,
	`.+\.fidl$`, `.+\.rs$`, `.+\.go$`,
}

// DefaultFilesToSkip matches paths checks ignore by default.
var DefaultFilesToSkip = []string{
	`testing_support[\\/]google_appengine[\\/].*`,
	`.*\bexperimental[\\/].*`,
	// third_party/ except third_party/WebKit and third_party/blink
	`.*\bthird_party[\\/](?!(WebKit|blink)[\\/]).*`,
	// Output directories
	`.*\bDebug[\\/].*`,
	`.*\bRelease[\\/].*`,
	`.*\bxcodebuild[\\/].*`,
	`.*\bout[\\/].*`,
	// All caps files like README and LICENSE
	`.*\b[A-Z0-9_]{2,}$`,
	// SCM
	`(|.*[\\/])\.git[\\/].*`,
	`(|.*[\\/])\.svn[\\/].*`,
	// Patches
	`.+\.diff$`,
	`.+\.patch$`,
}

// =============================================================================
// MATCHER
// =============================================================================

// matchTimeout bounds a single backtracking match.
const matchTimeout = time.Second

var (
	compiledMu sync.Mutex
	compiled   = make(map[string]*regexp2.Regexp)
)

// compile returns a cached regexp anchored at the start of the input only,
// which mirrors prefix-match semantics: `foo` matches "foo/bar.cc".
func compile(pattern string) (*regexp2.Regexp, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if re, ok := compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(`^(?:`+pattern+`)`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	re.MatchTimeout = matchTimeout
	compiled[pattern] = re
	return re, nil
}

// MatchPath reports whether pattern matches at the start of path.
func MatchPath(pattern, path string) (bool, error) {
	re, err := compile(pattern)
	if err != nil {
		return false, err
	}
	ok, err := re.MatchString(path)
	if err != nil {
		return false, fmt.Errorf("matching %q against %q: %w", pattern, path, err)
	}
	return ok, nil
}

// MatchAny reports whether any pattern matches at the start of path.
func MatchAny(patterns []string, path string) (bool, error) {
	for _, p := range patterns {
		ok, err := MatchPath(p, path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ValidatePatterns compiles every pattern and returns the first error.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := compile(p); err != nil {
			return err
		}
	}
	return nil
}

// Filter selects files by path.
type Filter struct {
	// FilesToCheck must match for a file to be selected. Empty uses DefaultFilesToCheck.
	FilesToCheck []string

	// FilesToSkip must not match. Nil uses DefaultFilesToSkip.
	FilesToSkip []string
}

// Match reports whether the path passes the filter.
func (f Filter) Match(path string) (bool, error) {
	check := f.FilesToCheck
	if len(check) == 0 {
		check = DefaultFilesToCheck
	}
	skip := f.FilesToSkip
	if skip == nil {
		skip = DefaultFilesToSkip
	}
	return FilterSourceFile(path, check, skip)
}

// FilterSourceFile reports whether path matches some entry of filesToCheck
// and no entry of filesToSkip. Both lists are used exactly as given.
func FilterSourceFile(path string, filesToCheck, filesToSkip []string) (bool, error) {
	path = NormalizePath(path)

	ok, err := MatchAny(filesToCheck, path)
	if err != nil || !ok {
		return false, err
	}
	skipped, err := MatchAny(filesToSkip, path)
	if err != nil {
		return false, err
	}
	return !skipped, nil
}
