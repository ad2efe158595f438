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
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// Replacement is one ordered text substitution.
type Replacement struct {
	Old string `yaml:"old" validate:"required"`
	New string `yaml:"new"`
}

// Disable replaces a check with one that returns nothing.
func Disable() Wrapper {
	return func(Check) Check {
		return func(context.Context, *Input) ([]result.Result, error) {
			return nil, nil
		}
	}
}

// ForceError escalates prompt warnings from the check to errors.
// Notifications stay informational.
func ForceError() Wrapper {
	return func(next Check) Check {
		return func(ctx context.Context, in *Input) ([]result.Result, error) {
			results, err := next(ctx, in)
			for i := range results {
				if results[i].Kind == result.KindPromptWarning {
					results[i] = results[i].Escalate()
				}
			}
			return results, err
		}
	}
}

// RewriteMessages applies replacements, in order, to every result message.
func RewriteMessages(replacements []Replacement) Wrapper {
	return func(next Check) Check {
		return func(ctx context.Context, in *Input) ([]result.Result, error) {
			results, err := next(ctx, in)
			for i := range results {
				results[i].Message = ApplyReplacements(results[i].Message, replacements)
			}
			return results, err
		}
	}
}

// ApplyReplacements performs each replacement on s in order.
func ApplyReplacements(s string, replacements []Replacement) string {
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.Old, r.New)
	}
	return s
}

// SkipPaths hides affected files whose path matches any pattern from the
// check. Patterns match at the start of the '/'-separated path.
func SkipPaths(patterns []string) Wrapper {
	if len(patterns) == 0 {
		return func(next Check) Check { return next }
	}
	return func(next Check) Check {
		return func(ctx context.Context, in *Input) ([]result.Result, error) {
			var kept []change.AffectedFile
			for _, f := range in.AffectedFiles(true) {
				path := change.NormalizePath(strings.TrimPrefix(f.LocalPath, in.pathPrefix))
				skip, err := change.MatchAny(patterns, path)
				if err != nil {
					return nil, err
				}
				if skip {
					in.Log().Debug("file hidden from check", slog.String("path", path))
					continue
				}
				f.LocalPath = strings.TrimPrefix(f.LocalPath, in.pathPrefix)
				kept = append(kept, f)
			}
			return next(ctx, in.WithAffectedFiles(kept))
		}
	}
}

// MapInput transforms the input a check receives.
func MapInput(fn func(*Input) *Input) Wrapper {
	return func(next Check) Check {
		return func(ctx context.Context, in *Input) ([]result.Result, error) {
			return next(ctx, fn(in))
		}
	}
}

// Chain composes wrappers. The first wrapper is the outermost.
func Chain(wraps ...Wrapper) Wrapper {
	return func(next Check) Check {
		for i := len(wraps) - 1; i >= 0; i-- {
			if wraps[i] != nil {
				next = wraps[i](next)
			}
		}
		return next
	}
}
