// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxFileSize is the largest file LoadContents reads (10 MiB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// binarySniffLen is how many leading bytes are scanned for NUL.
	binarySniffLen = 8192
)

// LoadOptions configures LoadContents.
type LoadOptions struct {
	// MaxFileSize skips larger files. Zero uses DefaultMaxFileSize.
	MaxFileSize int64

	// Concurrency bounds parallel reads. Zero uses GOMAXPROCS.
	Concurrency int

	// Logger receives per-file skip reasons at debug level.
	Logger *slog.Logger
}

// LoadContents reads every non-deleted file of the change.
//
// Description:
//
//	Reads run concurrently but each result is written to its own slot, so
//	file order is preserved. Binary, oversized, missing, and unreadable
//	files are marked Readable=false with empty Content; none of these are
//	errors. Only context cancellation is returned.
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	c - The change to populate in place.
//	opts - Limits.
//
// Outputs:
//
//	error - ctx.Err() if cancelled.
func LoadContents(ctx context.Context, c *Change, opts LoadOptions) error {
	if ctx == nil {
		return ErrNilContext
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c.resolvePaths()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range c.Files {
		if c.Files[i].Action == ActionDeleted {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			f := &c.Files[i]
			content, reason := readText(f.AbsolutePath, opts.MaxFileSize)
			if reason != "" {
				logger.Debug("file not readable",
					slog.String("path", f.LocalPath),
					slog.String("reason", reason),
				)
				f.Content, f.Readable = "", false
				return nil
			}
			f.Content, f.Readable = content, true
			return nil
		})
	}

	return g.Wait()
}

// ReadText reads a file as text with the default size limit.
//
// Returns the content and true, or "" and false when the file is binary,
// too large, or cannot be read.
func ReadText(path string) (string, bool) {
	content, reason := readText(path, DefaultMaxFileSize)
	return content, reason == ""
}

func readText(path string, maxSize int64) (string, string) {
	if path == "" {
		return "", "no path"
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "stat failed"
	}
	if info.IsDir() {
		return "", "directory"
	}
	if info.Size() > maxSize {
		return "", "too large"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "read failed"
	}
	if isBinary(data) {
		return "", "binary"
	}
	return string(data), ""
}

// isBinary reports whether data has a NUL byte in its leading bytes.
func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
