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
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// noGuardMarker opts a header out of the include guard check.
const noGuardMarker = "no-include-guard-because-"

// IncludeGuard returns the expected guard macro for a header path:
// upper-cased, non-alphanumerics replaced by '_', with a trailing '_'.
func IncludeGuard(path string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(change.NormalizePath(path)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	return b.String()
}

// CheckForIncludeGuards verifies that affected C/C++ headers use an
// include guard named after their path. The expected name is derived from
// the path the input reports, including any prefix.
func CheckForIncludeGuards(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	headers := in.AffectedSourceFiles(func(f change.AffectedFile) bool {
		return strings.HasSuffix(f.LocalPath, ".h") && in.FilterSourceFile(f)
	})

	var results []result.Result
	for _, f := range headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := in.ReadFile(f)
		if content == "" || strings.Contains(content, noGuardMarker) {
			continue
		}
		if problem := guardProblem(content, IncludeGuard(f.LocalPath)); problem != "" {
			results = append(results, result.NewError(problem, f.LocalPath))
		}
	}
	return results, nil
}

// guardProblem returns a description of what is wrong with the guard, or
// "" when it is correct.
func guardProblem(content, guard string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	ifndef := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#ifndef ") {
			ifndef = i
			break
		}
		if strings.HasPrefix(line, "#include") || strings.HasPrefix(line, "#define") {
			break
		}
	}
	if ifndef < 0 {
		return fmt.Sprintf("Missing include guard %s", guard)
	}

	name := strings.TrimSpace(strings.TrimPrefix(lines[ifndef], "#ifndef "))
	if name != guard {
		return fmt.Sprintf("Header using the wrong include guard name %s, expected %s", name, guard)
	}
	if ifndef+1 >= len(lines) || strings.TrimSpace(lines[ifndef+1]) != "#define "+guard {
		return fmt.Sprintf("Missing \"#define %s\" after the include guard", guard)
	}

	last := ""
	for i := len(lines) - 1; i > ifndef; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = strings.TrimSpace(lines[i])
			break
		}
	}
	if want := "#endif  // " + guard; last != want {
		return fmt.Sprintf("Incorrect or missing include guard #endif. Expected \"%s\"", want)
	}
	return ""
}
