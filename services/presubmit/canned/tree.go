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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/checks"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// maxTreeStatusBody bounds the tree status response read.
const maxTreeStatusBody = 1 << 20

// TreeStatus is the JSON document served by a tree status endpoint.
type TreeStatus struct {
	// CanCommitFreely is false while the tree is closed.
	CanCommitFreely bool `json:"can_commit_freely"`

	// Message is the sheriff's status text.
	Message string `json:"message"`

	// GeneralState is "open", "closed" or "throttled".
	GeneralState string `json:"general_state,omitempty"`
}

// FetchTreeStatus retrieves and decodes the status document at url.
func FetchTreeStatus(ctx context.Context, client *http.Client, url string) (*TreeStatus, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building tree status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tree status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching tree status: unexpected status %d", resp.StatusCode)
	}

	var status TreeStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTreeStatusBody)).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding tree status: %w", err)
	}
	return &status, nil
}

// CheckTreeIsOpen blocks while the tree status endpoint reports the tree
// closed. An empty TreeStatusURL disables the check.
func CheckTreeIsOpen(ctx context.Context, in *checks.Input) ([]result.Result, error) {
	if in.TreeStatusURL == "" {
		return nil, nil
	}

	status, err := FetchTreeStatus(ctx, in.HTTPClient, in.TreeStatusURL)
	if err != nil {
		in.Log().Warn("tree status unavailable",
			slog.String("url", in.TreeStatusURL),
			slog.String("error", err.Error()),
		)
		return []result.Result{result.NewError("Error fetching tree status.").WithLongText(err.Error())}, nil
	}
	if status.CanCommitFreely {
		return nil, nil
	}
	return []result.Result{result.NewError(
		"The tree is closed. Please wait for it to reopen. Sheriff message: " + status.Message)}, nil
}
