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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
)

// plannedCheck is one entry of `presubmit checks --json`.
type plannedCheck struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
}

func newChecksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the checks a run executes, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, proj, err := a.registries()
			if err != nil {
				return &exitError{code: ExitToolError, err: err}
			}
			plan := checks.NewRunner(host, proj).Plan()

			if a.flags.json {
				out := make([]plannedCheck, 0, len(plan))
				for _, entry := range plan {
					reg, name := splitPlanEntry(entry)
					out = append(out, plannedCheck{Registry: reg, Name: name})
				}
				return writeJSON(a.stdout, out)
			}

			p := a.printer()
			p.Title("Presubmit checks")
			for i, entry := range plan {
				fmt.Fprintf(a.stdout, "%3d  %s\n", i+1, entry)
			}
			return nil
		},
	}
}

func splitPlanEntry(entry string) (registry, name string) {
	registry, name, ok := strings.Cut(entry, "/")
	if !ok {
		return "", entry
	}
	return registry, name
}
