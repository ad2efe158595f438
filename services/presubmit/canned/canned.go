// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package canned provides the host checks every project inherits.
//
// Pan-project checks run for every change before the project's own checks.
// The remaining checks are library checks a project calls through
// Input.Canned:
//
//	func checkFormatting(ctx context.Context, in *checks.Input) ([]result.Result, error) {
//	    return in.Canned.Call(ctx, canned.PatchFormatted, in)
//	}
//
// Downstream projects adjust these checks with checks.Registry.Override
// rather than by replacing them in place.
package canned

import (
	"fmt"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
)

// Check names.
const (
	License           = "CheckLicense"
	OwnersFormat      = "CheckOwnersFormat"
	Owners            = "CheckOwners"
	AuthorizedAuthor  = "CheckAuthorizedAuthor"
	ChangeWasUploaded = "CheckChangeWasUploaded"
	ChangeHasBugField = "CheckChangeHasBugField"
	TreeIsOpen        = "CheckTreeIsOpen"

	ChangeLintsClean     = "CheckChangeLintsClean"
	SourceTreeLintsClean = "CheckSourceTreeLintsClean"
	PatchFormatted       = "CheckPatchFormatted"
	ForIncludeGuards     = "CheckForIncludeGuards"
)

// PanProjectChecks lists the checks that run for every change.
var PanProjectChecks = []string{
	License,
	OwnersFormat,
	Owners,
	AuthorizedAuthor,
	ChangeWasUploaded,
	ChangeHasBugField,
	TreeIsOpen,
}

// NewRegistry returns a registry named "canned" holding every host check.
func NewRegistry() *checks.Registry {
	reg := checks.NewRegistry("canned")
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// Register adds every host check to reg.
//
// Outputs:
//
//	error - ErrDuplicateCheck if reg already holds one of the names.
func Register(reg *checks.Registry) error {
	pan := []struct {
		name  string
		check checks.Check
	}{
		{License, CheckLicense},
		{OwnersFormat, CheckOwnersFormat},
		{Owners, CheckOwners},
		{AuthorizedAuthor, CheckAuthorizedAuthor},
		{ChangeWasUploaded, CheckChangeWasUploaded},
		{ChangeHasBugField, CheckChangeHasBugField},
		{TreeIsOpen, CheckTreeIsOpen},
	}
	for _, c := range pan {
		if err := reg.Register(c.name, c.check, checks.PanProject()); err != nil {
			return fmt.Errorf("registering %s: %w", c.name, err)
		}
	}

	library := []struct {
		name  string
		check checks.Check
	}{
		{ChangeLintsClean, CheckChangeLintsClean},
		{SourceTreeLintsClean, CheckSourceTreeLintsClean},
		{PatchFormatted, CheckPatchFormatted},
		{ForIncludeGuards, CheckForIncludeGuards},
	}
	for _, c := range library {
		if err := reg.Register(c.name, c.check); err != nil {
			return fmt.Errorf("registering %s: %w", c.name, err)
		}
	}
	return nil
}
