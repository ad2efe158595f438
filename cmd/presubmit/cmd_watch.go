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
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/telemetry"
	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		opts        checkOptions
		metricsAddr string
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run presubmit checks whenever files change",
		Long: `Watch the repository and re-run the checks after each burst of edits.

The change is computed from git (--mode) on every run, so the report always
covers the whole pending change, not just the files that were touched.

Examples:
  presubmit watch
  presubmit watch --mode branch --rev origin/master
  presubmit watch --metrics-addr :9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts.yes = true

			if metricsAddr != "" {
				stop, err := a.serveMetrics(metricsAddr)
				if err != nil {
					return &exitError{code: ExitToolError, err: err}
				}
				defer stop()
			}

			w, err := watch.New(a.root, watch.Options{
				Debounce: debounce,
				Logger:   a.logger.Slog(),
			})
			if err != nil {
				return &exitError{code: ExitToolError, err: err}
			}
			defer w.Close()

			a.checkOnce(ctx, opts, nil)
			err = w.Run(ctx, func(ctx context.Context, paths []string) {
				a.logger.Info("files changed", "count", len(paths), "paths", strings.Join(paths, ","))
				a.checkOnce(ctx, opts, paths)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return &exitError{code: ExitToolError, err: err}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", "diff", "Change detection: diff, staged, commit, branch")
	f.StringVar(&opts.rev, "rev", "", "Commit for --mode commit, base branch for --mode branch")
	f.StringSliceVar(&opts.only, "only", nil, "Run only the named checks")
	f.BoolVar(&opts.noLint, "no-lint", false, "Skip external linters and formatters")
	f.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.DurationVar(&debounce, "debounce", 300*time.Millisecond, "Quiet period before re-running")
	return cmd
}

// checkOnce runs one check pass and logs the outcome. Failures never stop
// the watch loop.
func (a *app) checkOnce(ctx context.Context, opts checkOptions, paths []string) {
	if len(paths) > 0 {
		a.printer().Muted("changed: " + strings.Join(paths, " "))
	}
	err := a.runCheck(ctx, opts, nil)
	var ee *exitError
	switch {
	case err == nil:
		a.logger.Debug("check passed")
	case errors.As(err, &ee) && ee.code == ExitBlocking:
		a.logger.Info("check found blocking results")
	default:
		a.logger.Error("check failed", "error", err)
	}
}

// serveMetrics exposes the prometheus handler at /metrics until stop is
// called.
func (a *app) serveMetrics(addr string) (stop func(), err error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, errors.New("prometheus exporter is not active")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
