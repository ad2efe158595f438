// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPresubmit/pkg/ux"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
)

func newLicenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Print or verify the license header",
	}
	cmd.AddCommand(
		newLicenseHeaderCmd(a),
		newLicensePatternCmd(a),
		newLicenseVerifyCmd(a),
	)
	return cmd
}

func newLicenseHeaderCmd(a *app) *cobra.Command {
	var (
		year   int
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Print the canonical license header",
		Long: `Print the canonical license header for new files.

Examples:
  presubmit license header
  presubmit license header --prefix '#'
  presubmit license header --year 2024 --prefix '//'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year = a.now().Year()
			}
			fmt.Fprint(a.stdout, license.Header(year, prefix, a.cfg.License.Holder))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Copyright year (default: current year)")
	cmd.Flags().StringVar(&prefix, "prefix", "//", "Comment marker placed before each line")
	return cmd
}

func newLicensePatternCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pattern",
		Short: "Print the regular expression every header must match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pattern, err := a.validator().Pattern()
			if err != nil {
				return &exitError{code: ExitToolError, err: err}
			}
			if a.flags.json {
				return writeJSON(a.stdout, map[string]any{
					"pattern":  pattern.String(),
					"key_line": pattern.KeyLine(),
					"years":    pattern.Years(),
				})
			}
			fmt.Fprintln(a.stdout, pattern.String())
			return nil
		},
	}
}

func newLicenseVerifyCmd(a *app) *cobra.Command {
	var (
		allNew bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check license headers of the given files",
		Long: `Check license headers of the given files.

Files are treated as modified unless --new is set; a violation in a new file
blocks, violations only in modified files warn.

Exit Codes:
  0 = All headers valid, or only modified files violate
  1 = A new file violates (or any file with --strict)
  2 = Error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]license.File, 0, len(args))
			for _, arg := range args {
				content, _ := change.ReadText(arg)
				files = append(files, license.File{
					Path:    a.displayPath(arg),
					Content: content,
					IsNew:   allNew,
				})
			}

			report, err := a.validator().ValidateContext(cmd.Context(), files)
			if err != nil {
				return &exitError{code: ExitToolError, err: err}
			}

			if a.flags.json {
				if err := writeJSON(a.stdout, report); err != nil {
					return &exitError{code: ExitToolError, err: err}
				}
			} else {
				renderLicenseReport(a.printer(), report)
			}

			switch {
			case report.Severity == license.SeverityBlocking:
				return blocking
			case report.Severity == license.SeverityWarning && (strict || a.cfg.Strict):
				return blocking
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allNew, "new", false, "Treat every file as newly added")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when modified files violate")
	return cmd
}

// displayPath shows path relative to the repository root when it is inside.
func (a *app) displayPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil || a.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(a.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func renderLicenseReport(p *ux.Printer, report *license.Report) {
	for _, f := range report.Files {
		switch f.Status {
		case license.StatusValid:
			p.Success(f.Path)
		case license.StatusInvalidNew:
			p.Error(fmt.Sprintf("%s (new file: %v)", f.Path, f.Err))
		default:
			p.Warning(fmt.Sprintf("%s (%v)", f.Path, f.Err))
		}
	}
	if report.HasViolations() {
		p.Muted("License must match:\n" + report.Pattern)
	}
}
