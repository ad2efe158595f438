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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/AleutianPresubmit/pkg/ux"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// reportSection is one block of text output.
type reportSection struct {
	kind  result.Kind
	title string
	icon  ux.Icon
	tag   string
}

// sections are printed errors first.
var sections = []reportSection{
	{result.KindError, "** Presubmit ERRORS **", ux.IconError, "ERROR"},
	{result.KindPromptWarning, "** Presubmit Warnings **", ux.IconWarning, "WARN"},
	{result.KindNotify, "** Presubmit Messages **", ux.IconNotify, "NOTIFY"},
}

// renderReport prints a report grouped by result kind.
func renderReport(p *ux.Printer, report *checks.Report) {
	for _, sec := range sections {
		rs := report.Results.Filter(sec.kind)
		if len(rs) == 0 {
			continue
		}
		p.Title(sec.title)
		for _, r := range rs {
			p.Status(sec.icon, sec.tag, fmt.Sprintf("[%s] %s", r.Check, r.Message))
			p.Items(r.Items)
			if r.LongText != "" {
				p.Muted(r.LongText)
			}
		}
	}

	if len(report.Results) == 0 {
		p.Success(fmt.Sprintf("Presubmit checks passed (%d checks).", len(report.Checks)))
	}
	counts := report.Results.Counts()
	p.Summary(counts[result.KindError], counts[result.KindPromptWarning], counts[result.KindNotify])
	p.Muted(fmt.Sprintf("run %s in %s", report.RunID, report.Duration.Round(time.Millisecond)))
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
