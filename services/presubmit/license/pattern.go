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

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// FirstYear is the earliest copyright year accepted by default.
	FirstYear = 2015

	// KeyLine is the fixed second header line. A file lacking it cannot
	// carry a compatible license, so its absence short-circuits validation.
	KeyLine = "This Source Code Form is subject to the terms of the Mozilla Public"

	// DefaultHolder is the copyright holder named on the first header line.
	DefaultHolder = "The Brave Authors"
)

// headerTemplate is the full four-line pattern. %[1]s is the year
// alternation, %[2]s the escaped holder and %[3]s the escaped key line.
const headerTemplate = `.*? Copyright (\(c\) )?%[1]s %[2]s\. All rights reserved\.?\r?\n` +
	`.*? %[3]s\r?\n?` +
	`.*? License, v\. 2\.0\. If a copy of the MPL was not distributed with this?\r?\n?.*?file,?\r?\n?` +
	`.*? (Y|y)ou can obtain one at https?://mozilla\.org/MPL/2\.0/\.(?: \*/)?\r?\n`

// =============================================================================
// PATTERN
// =============================================================================

// PatternOptions parameterizes the header pattern.
type PatternOptions struct {
	// FirstYear is the earliest accepted copyright year. Zero means FirstYear.
	FirstYear int

	// Holder is the copyright holder. Empty means DefaultHolder.
	Holder string

	// KeyLine is the fixed pre-filter line. Empty means KeyLine.
	KeyLine string
}

func (o PatternOptions) withDefaults() PatternOptions {
	if o.FirstYear == 0 {
		o.FirstYear = FirstYear
	}
	if o.Holder == "" {
		o.Holder = DefaultHolder
	}
	if o.KeyLine == "" {
		o.KeyLine = KeyLine
	}
	return o
}

// Pattern is a compiled license header pattern for a fixed current year.
//
// Thread Safety: Immutable after creation; safe for concurrent use.
type Pattern struct {
	re      *regexp.Regexp
	source  string
	keyLine string
	years   []string
}

// NewPattern builds the header pattern accepting FirstYear..currentYear.
//
// Description:
//
//	Builds the year alternation most-recent-first, substitutes it together
//	with the regex-escaped holder and key line into the four-line header
//	template, and compiles the result in multi-line mode.
//
// Inputs:
//
//	currentYear - The newest acceptable copyright year
//	opts - Optional overrides for first year, holder and key line
//
// Outputs:
//
//	*Pattern - The compiled pattern
//	error - ErrInvalidYearRange if currentYear precedes the first year
func NewPattern(currentYear int, opts PatternOptions) (*Pattern, error) {
	opts = opts.withDefaults()
	if currentYear < opts.FirstYear {
		return nil, fmt.Errorf("%w: first year %d is after %d", ErrInvalidYearRange, opts.FirstYear, currentYear)
	}

	years := AllowedYears(opts.FirstYear, currentYear)
	source := fmt.Sprintf(headerTemplate,
		"("+strings.Join(years, "|")+")",
		regexp.QuoteMeta(opts.Holder),
		regexp.QuoteMeta(opts.KeyLine),
	)

	re, err := regexp.Compile("(?m)" + source)
	if err != nil {
		return nil, fmt.Errorf("compiling license pattern: %w", err)
	}

	return &Pattern{
		re:      re,
		source:  source,
		keyLine: opts.KeyLine,
		years:   years,
	}, nil
}

// AllowedYears returns every year in [first, current] as strings,
// most recent first. The order is cosmetic.
func AllowedYears(first, current int) []string {
	if current < first {
		return nil
	}
	years := make([]string, 0, current-first+1)
	for y := current; y >= first; y-- {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

// String returns the pattern source without flags, as shown to users.
func (p *Pattern) String() string {
	return p.source
}

// KeyLine returns the literal pre-filter line.
func (p *Pattern) KeyLine() string {
	return p.keyLine
}

// Years returns the accepted years, most recent first.
func (p *Pattern) Years() []string {
	out := make([]string, len(p.years))
	copy(out, p.years)
	return out
}

// CheckContent reports why content fails the header pattern.
//
// Description:
//
//	Returns nil for empty content and for content containing a matching
//	header anywhere. The key-line substring test runs first so the regex
//	is only evaluated for plausible candidates.
//
// Inputs:
//
//	content - Full file text
//
// Outputs:
//
//	error - nil, ErrMissingKeyLine or ErrPatternMismatch
func (p *Pattern) CheckContent(content string) error {
	if content == "" {
		return nil
	}
	if !strings.Contains(content, p.keyLine) {
		return ErrMissingKeyLine
	}
	if !p.re.MatchString(content) {
		return ErrPatternMismatch
	}
	return nil
}

// =============================================================================
// HEADER RENDERING
// =============================================================================

// Header renders the canonical header for year using prefix as the comment
// marker on each line. Lines end with "\n". An empty holder means
// DefaultHolder.
//
// For block comments pass "/*" or " *" and append the closing token
// yourself; the pattern tolerates a trailing " */" on the last line.
func Header(year int, prefix, holder string) string {
	if holder == "" {
		holder = DefaultHolder
	}
	lines := []string{
		fmt.Sprintf("Copyright (c) %d %s. All rights reserved.", year, holder),
		KeyLine,
		"License, v. 2.0. If a copy of the MPL was not distributed with this file,",
		"You can obtain one at https://mozilla.org/MPL/2.0/.",
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(prefix)
		b.WriteString(" ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
