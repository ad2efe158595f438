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
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// HuhConfirmer asks through a charmbracelet/huh form.
type HuhConfirmer struct {
	// Accessible switches huh to its line-based mode.
	Accessible bool
}

// Confirm shows the question and returns the answer. Aborting the form
// with ctrl+c counts as "no".
func (h HuhConfirmer) Confirm(ctx context.Context, title, description string) (bool, error) {
	answer := false
	field := huh.NewConfirm().
		Title(title).
		Description(truncate(description, 400)).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(presubmitTheme()).
		WithAccessible(h.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return answer, nil
}

// StaticConfirmer always returns Answer. Used when prompting is disabled.
type StaticConfirmer struct {
	Answer bool
}

// Confirm returns the fixed answer.
func (s StaticConfirmer) Confirm(context.Context, string, string) (bool, error) {
	return s.Answer, nil
}

func presubmitTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(ColorTealBright).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(lipgloss.Color("#0F1923")).
		Background(ColorTealPrimary)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorSlate)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorSlate)
	return t
}

// truncate shortens s to maxLen runes, ending with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
