// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel defines the richness of CLI output.
type PersonalityLevel string

const (
	// PersonalityFull enables colors, icons, and boxes.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityMinimal uses icons without colors or boxes.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain, tab-separated text for scripts.
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalityEnv overrides the detected level.
const PersonalityEnv = "PRESUBMIT_PERSONALITY"

var (
	currentLevel = PersonalityFull
	levelMu      sync.RWMutex
)

// GetPersonalityLevel returns the current level.
func GetPersonalityLevel() PersonalityLevel {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return currentLevel
}

// SetPersonalityLevel updates the current level.
func SetPersonalityLevel(level PersonalityLevel) {
	levelMu.Lock()
	defer levelMu.Unlock()
	currentLevel = level
}

// ParsePersonalityLevel converts a string to a level. Unknown names map to
// PersonalityFull.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(s) {
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q", "plain":
		return PersonalityMachine
	default:
		return PersonalityFull
	}
}

// InitPersonality picks the level from PRESUBMIT_PERSONALITY, falling back
// to machine output when stdout is not a terminal.
func InitPersonality() {
	if env := os.Getenv(PersonalityEnv); env != "" {
		SetPersonalityLevel(ParsePersonalityLevel(env))
		return
	}
	if !IsTerminal(os.Stdout) {
		SetPersonalityLevel(PersonalityMachine)
		return
	}
	SetPersonalityLevel(PersonalityFull)
}

// IsTerminal reports whether f is a terminal, including Cygwin and MSYS
// pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive returns true if prompts may be shown: both stdin and stdout
// are terminals and the level is not machine.
func IsInteractive() bool {
	return GetPersonalityLevel() != PersonalityMachine && IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}
