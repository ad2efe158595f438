// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package checks holds presubmit checks and composes overrides explicitly.
//
// A Check is a plain function. Checks live in a Registry under a name;
// replacing or decorating a check is an explicit call on the registry:
//
//	canned := checks.NewRegistry("canned")
//	canned.MustRegister("CheckLicense", upstreamLicense, checks.PanProject())
//
//	// Disable it for this repository.
//	_ = canned.Override("CheckLicense", checks.Disable())
//
//	// Escalate warnings and rewrite advice of another check.
//	_ = canned.Override("CheckPatchFormatted", checks.Chain(
//	    checks.ForceError(),
//	    checks.RewriteMessages(replacements),
//	))
//
// Checks read their inputs through *Input. Input is never mutated in place:
// the With* helpers return modified copies, so a decorator can narrow the
// files a single check sees without affecting any other check.
//
// Runner executes the pan-project canned checks and then the project checks
// in registration order and collects their results into a Report.
package checks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AleutianAI/AleutianPresubmit/services/presubmit/result"
)

// Sentinel errors for the checks package.
var (
	// ErrCheckNotFound indicates no check is registered under the name.
	ErrCheckNotFound = errors.New("check not found")

	// ErrDuplicateCheck indicates the name is already registered.
	ErrDuplicateCheck = errors.New("check already registered")

	// ErrInvalidCheck indicates an empty name or a nil check or wrapper.
	ErrInvalidCheck = errors.New("invalid check")
)

// Check inspects a change and returns results.
//
// Returning an error means the check could not run. The runner reports it as
// a blocking result and continues with the next check.
type Check func(ctx context.Context, in *Input) ([]result.Result, error)

// Wrapper decorates a check. The returned check usually calls next.
type Wrapper func(next Check) Check

type entry struct {
	check      Check
	panProject bool
}

// RegisterOption configures a registry entry.
type RegisterOption func(*entry)

// PanProject marks a check the runner executes for every project.
func PanProject() RegisterOption {
	return func(e *entry) {
		e.panProject = true
	}
}

// Registry is an ordered set of named checks.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	name    string
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

// NewRegistry creates an empty registry. name appears in reports.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:    name,
		entries: make(map[string]*entry),
	}
}

// Name returns the registry name.
func (r *Registry) Name() string {
	return r.name
}

// Register adds a check under a new name.
//
// Errors:
//
//	ErrInvalidCheck - name is empty or c is nil
//	ErrDuplicateCheck - name is already registered
func (r *Registry) Register(name string, c Check, opts ...RegisterOption) error {
	if name == "" || c == nil {
		return fmt.Errorf("%w: %q", ErrInvalidCheck, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateCheck, r.name, name)
	}
	e := &entry{check: c}
	for _, opt := range opts {
		opt(e)
	}
	r.entries[name] = e
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on error. For static registration.
func (r *Registry) MustRegister(name string, c Check, opts ...RegisterOption) {
	if err := r.Register(name, c, opts...); err != nil {
		panic(err)
	}
}

// Replace swaps the implementation of an existing check, keeping its position.
func (r *Registry) Replace(name string, c Check) error {
	if c == nil {
		return fmt.Errorf("%w: nil replacement for %q", ErrInvalidCheck, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrCheckNotFound, r.name, name)
	}
	e.check = c
	return nil
}

// Override decorates an existing check with wrap.
//
// Description:
//
//	The current implementation is passed to wrap and the result replaces
//	it. Overriding twice stacks: the second wrapper sees the first one's
//	output.
func (r *Registry) Override(name string, wrap Wrapper) error {
	if wrap == nil {
		return fmt.Errorf("%w: nil wrapper for %q", ErrInvalidCheck, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrCheckNotFound, r.name, name)
	}
	wrapped := wrap(e.check)
	if wrapped == nil {
		return fmt.Errorf("%w: wrapper for %q returned nil", ErrInvalidCheck, name)
	}
	e.check = wrapped
	return nil
}

// OverrideAll applies wrap to every registered check.
func (r *Registry) OverrideAll(wrap func(name string) Wrapper) error {
	for _, name := range r.Names() {
		w := wrap(name)
		if w == nil {
			continue
		}
		if err := r.Override(name, w); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the current implementation of a check.
func (r *Registry) Get(name string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.check, true
}

// Has reports whether a check is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Call runs a check by name.
func (r *Registry) Call(ctx context.Context, name string, in *Input) ([]result.Result, error) {
	c, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrCheckNotFound, r.name, name)
	}
	return c(ctx, in)
}

// Names returns every check name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// PanProjectNames returns the names registered with PanProject, in order.
func (r *Registry) PanProjectNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		if r.entries[name].panProject {
			names = append(names, name)
		}
	}
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
