// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-runs presubmit whenever files in a repository change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrAlreadyRunning indicates Run was called on a watcher that is running.
var ErrAlreadyRunning = errors.New("watcher already running")

// Handler receives one debounced burst of changed paths, relative to the
// repository root and sorted.
type Handler func(ctx context.Context, paths []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period that ends a burst. Default: 300ms.
	Debounce time.Duration

	// Ignore are directory base names never watched.
	// Default: .git, out, node_modules.
	Ignore []string

	// Logger receives watch errors. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the defaults used when New gets a zero Options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Ignore:   []string{".git", "out", "node_modules"},
		Logger:   slog.Default(),
	}
}

// Watcher watches every directory under a repository root.
//
// Thread Safety: Run may be called once at a time. The handler is called
// from the Run goroutine, so bursts never overlap.
type Watcher struct {
	root    string
	opts    Options
	fsw     *fsnotify.Watcher
	ignore  map[string]struct{}
	mu      sync.Mutex
	running bool
}

// New creates a watcher for root. Zero option fields take their defaults.
func New(root string, opts Options) (*Watcher, error) {
	defaults := DefaultOptions()
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}
	if opts.Ignore == nil {
		opts.Ignore = defaults.Ignore
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:   abs,
		opts:   opts,
		fsw:    fsw,
		ignore: make(map[string]struct{}, len(opts.Ignore)),
	}
	for _, name := range opts.Ignore {
		w.ignore[name] = struct{}{}
	}
	if err := w.addRecursive(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher. Run returns once Close is called.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced bursts to fn until ctx is cancelled or the
// watcher is closed.
//
// Outputs:
//
//	error - ctx.Err() on cancellation, nil after Close, or
//	        ErrAlreadyRunning.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, keep := w.relevant(event)
			if !keep {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			fn(ctx, paths)
		}
	}
}

// relevant returns the repository-relative path of event, and whether it
// belongs to a burst. New directories are added to the watch list.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.opts.Logger.Warn("watching new directory",
					slog.String("path", rel), slog.String("error", err.Error()))
			}
			return "", false
		}
	}
	return rel, true
}

func (w *Watcher) ignored(rel string) bool {
	for dir := filepath.ToSlash(filepath.Dir(rel)); ; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if _, ok := w.ignore[filepath.Base(dir)]; ok && dir != "." {
			return true
		}
		if dir == "." || dir == "/" {
			break
		}
	}
	_, ok := w.ignore[filepath.Base(rel)]
	return ok
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if _, ok := w.ignore[d.Name()]; ok {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
