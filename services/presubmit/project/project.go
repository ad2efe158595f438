// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package project holds the downstream repository's own presubmit checks.
//
// Most checks delegate to the host checks in Input.Canned; CheckLicense
// enforces the downstream license header with the license package.
package project

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/canned"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/change"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/license"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// Check names.
const (
	ChangeLintsClean         = "CheckChangeLintsClean"
	License                  = "CheckLicense"
	PatchFormatted           = "CheckPatchFormatted"
	ForIncludeGuards         = "CheckForIncludeGuards"
	NewHeaderWithoutGnChange = "CheckNewHeaderWithoutGnChangeOnUpload"
)

// NewRegistry returns a registry named "project" holding every project
// check, validating license headers with v. A nil v uses the defaults.
func NewRegistry(v *license.Validator) *checks.Registry {
	reg := checks.NewRegistry("project")
	if err := Register(reg, v); err != nil {
		panic(err)
	}
	return reg
}

// Register adds the project checks to reg in run order.
func Register(reg *checks.Registry, v *license.Validator) error {
	if v == nil {
		v = license.NewValidator()
	}
	all := []struct {
		name  string
		check checks.Check
	}{
		{ChangeLintsClean, callCanned(canned.ChangeLintsClean)},
		{License, LicenseCheck(v)},
		{PatchFormatted, callCanned(canned.PatchFormatted)},
		{ForIncludeGuards, callCanned(canned.ForIncludeGuards)},
		{NewHeaderWithoutGnChange, CheckNewHeaderWithoutGnChange},
	}
	for _, c := range all {
		if err := reg.Register(c.name, c.check); err != nil {
			return fmt.Errorf("registering %s: %w", c.name, err)
		}
	}
	return nil
}

// callCanned returns a check that runs the named host check.
func callCanned(name string) checks.Check {
	return func(ctx context.Context, in *checks.Input) ([]result.Result, error) {
		if in.Canned == nil {
			return nil, fmt.Errorf("%s: %w: no host registry", name, checks.ErrCheckNotFound)
		}
		return in.Canned.Call(ctx, name, in)
	}
}

// CheckNewHeaderWithoutGnChange warns when a change adds C/C++ headers but
// touches no GN build file.
func CheckNewHeaderWithoutGnChange(_ context.Context, in *checks.Input) ([]result.Result, error) {
	var headers []string
	gnChanged := false
	for _, f := range in.AffectedFiles(false) {
		switch ext := path.Ext(f.LocalPath); {
		case ext == ".gn" || ext == ".gni":
			gnChanged = true
		case ext == ".h" && f.IsNew() && in.FilterSourceFile(f):
			headers = append(headers, f.LocalPath)
		}
	}
	if gnChanged || len(headers) == 0 {
		return nil, nil
	}
	return []result.Result{result.NewPromptWarning(
		"Missing GN changes for new header files:", headers...,
	).WithLongText("Add each new header to the sources of a target in a BUILD.gn file.")}, nil
}

// =============================================================================
// LICENSE
// =============================================================================

// LicenseFilesToCheck extends the default source patterns with GN files.
var LicenseFilesToCheck = append(append([]string(nil), change.DefaultFilesToCheck...), `.+\.gni?$`)

const (
	licenseBlockingSuffix = "Found a bad license header in these files, some of which are new:"
	licenseWarningSuffix  = "Found a bad license header in these files:"
)

// LicenseCheck returns a check that validates license headers on affected
// source files with v.
//
// Description:
//
//	Candidates are non-deleted files matching LicenseFilesToCheck and not
//	matching the input's files-to-skip. Binary or unreadable files carry no
//	content and pass. A violating new file blocks the change; violating
//	existing files only warn. Either result names every violating path and
//	includes the required pattern.
func LicenseCheck(v *license.Validator) checks.Check {
	return func(ctx context.Context, in *checks.Input) ([]result.Result, error) {
		candidates := in.AffectedSourceFiles(func(f change.AffectedFile) bool {
			return in.FilterSourceFileWith(f, LicenseFilesToCheck, in.FilesToSkip)
		})

		files := make([]license.File, 0, len(candidates))
		for _, f := range candidates {
			files = append(files, license.File{
				Path:    f.LocalPath,
				Content: in.ReadFile(f),
				IsNew:   f.IsNew(),
			})
		}

		report, err := v.ValidateContext(ctx, files)
		if err != nil {
			return nil, err
		}
		return LicenseResults(report), nil
	}
}

// LicenseResults converts a validation report into at most one result.
func LicenseResults(report *license.Report) []result.Result {
	var b strings.Builder
	b.WriteString("License must match:\n")
	b.WriteString(report.Pattern)
	b.WriteString("\n")

	switch report.Severity {
	case license.SeverityBlocking:
		b.WriteString(licenseBlockingSuffix)
		return []result.Result{result.NewError(b.String(), report.Violations...)}
	case license.SeverityWarning:
		b.WriteString(licenseWarningSuffix)
		return []result.Result{result.NewPromptWarning(b.String(), report.Violations...)}
	default:
		return nil
	}
}
