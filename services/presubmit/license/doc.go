// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package license verifies the MPL-2.0 license header carried by source files.
//
// A valid header spans four lines, each optionally preceded by a comment
// marker and optionally terminated by a carriage return:
//
//	# Copyright (c) 2024 The Brave Authors. All rights reserved.
//	# This Source Code Form is subject to the terms of the Mozilla Public
//	# License, v. 2.0. If a copy of the MPL was not distributed with this file,
//	# You can obtain one at https://mozilla.org/MPL/2.0/.
//
// The copyright year must fall in [FirstYear, current year]. The current
// year is read from the validator's clock on every Validate call, so the
// pattern is rebuilt per run.
//
// # Pipeline
//
//	content → empty? (pass) → key line present? (no: ErrMissingKeyLine)
//	        → full pattern search (no: ErrPatternMismatch) → valid
//
// The key-line substring test rejects most unlicensed files without running
// the multi-line regex over large inputs.
//
// # Severity
//
//	| Violations on        | Report severity | Effect          |
//	|----------------------|-----------------|-----------------|
//	| none                 | SeverityNone    | pass            |
//	| modified files only  | SeverityWarning | warn, allow     |
//	| at least one new file| SeverityBlocking| block the change|
//
// A blocking report still lists every violating file, new or not.
//
// # Usage
//
//	v := license.NewValidator()
//	report := v.Validate([]license.File{
//	    {Path: "foo/bar.cc", Content: src, IsNew: true},
//	})
//	if report.Severity == license.SeverityBlocking {
//	    fmt.Println(report.Pattern)
//	}
//
// # Thread Safety
//
// Validator is safe for concurrent use. Validate itself is synchronous.
package license
