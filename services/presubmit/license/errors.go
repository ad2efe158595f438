// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package license

import "errors"

// Sentinel errors describing why a file failed header validation.
var (
	// ErrMissingKeyLine indicates the content does not contain KeyLine at all.
	// The full pattern is not evaluated in this case.
	ErrMissingKeyLine = errors.New("license key line missing")

	// ErrPatternMismatch indicates KeyLine is present but the full header
	// pattern matched nowhere in the content.
	ErrPatternMismatch = errors.New("license header does not match pattern")

	// ErrInvalidYearRange indicates a first year later than the current year.
	ErrInvalidYearRange = errors.New("invalid license year range")
)
