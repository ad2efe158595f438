// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the presubmit CLI.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#7F8C8D")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title    lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Notify   lipgloss.Style
	Item     lipgloss.Style
	Box      lipgloss.Style
	ErrorBox lipgloss.Style
	WarnBox  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Notify:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Item:    lipgloss.NewStyle().PaddingLeft(2),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
	WarnBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
}

// Icon provides themed status icons.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconNotify  Icon = "•"
	IconArrow   Icon = "→"
)

// Render returns the icon with its style.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconNotify:
		return Styles.Notify.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes styled lines that respect the personality level.
//
// Thread Safety: Not safe for concurrent use.
type Printer struct {
	out   io.Writer
	level PersonalityLevel
}

// NewPrinter creates a Printer writing to out at the current level.
// A nil writer means os.Stdout.
func NewPrinter(out io.Writer) *Printer {
	return NewPrinterLevel(out, GetPersonalityLevel())
}

// NewPrinterLevel creates a Printer with an explicit level.
func NewPrinterLevel(out io.Writer, level PersonalityLevel) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, level: level}
}

// Level returns the printer's personality level.
func (p *Printer) Level() PersonalityLevel {
	return p.level
}

// Title prints a styled title. Machine output omits it.
func (p *Printer) Title(text string) {
	if p.level == PersonalityMachine {
		return
	}
	if p.level == PersonalityMinimal {
		fmt.Fprintln(p.out, text)
		return
	}
	fmt.Fprintln(p.out, Styles.Title.Render(text))
}

// Status prints one line prefixed by icon. Machine output uses tag instead.
func (p *Printer) Status(icon Icon, tag, text string) {
	switch p.level {
	case PersonalityMachine:
		fmt.Fprintf(p.out, "%s: %s\n", tag, text)
	case PersonalityMinimal:
		fmt.Fprintf(p.out, "%s %s\n", icon, text)
	default:
		fmt.Fprintf(p.out, "%s %s\n", icon.Render(), text)
	}
}

// Success prints a success line.
func (p *Printer) Success(text string) { p.Status(IconSuccess, "OK", text) }

// Warning prints a warning line.
func (p *Printer) Warning(text string) { p.Status(IconWarning, "WARN", text) }

// Error prints an error line.
func (p *Printer) Error(text string) { p.Status(IconError, "ERROR", text) }

// Items prints an indented list.
func (p *Printer) Items(items []string) {
	for _, item := range items {
		if p.level == PersonalityMachine {
			fmt.Fprintf(p.out, "\t%s\n", item)
			continue
		}
		fmt.Fprintln(p.out, Styles.Item.Render(item))
	}
}

// Muted prints secondary text. Machine output omits it.
func (p *Printer) Muted(text string) {
	switch p.level {
	case PersonalityMachine:
		return
	case PersonalityMinimal:
		fmt.Fprintln(p.out, text)
	default:
		fmt.Fprintln(p.out, Styles.Muted.Render(text))
	}
}

// Box prints content inside a bordered box styled by icon.
func (p *Printer) Box(icon Icon, title, content string) {
	if p.level != PersonalityFull {
		fmt.Fprintf(p.out, "%s: %s\n", title, strings.TrimSpace(content))
		return
	}
	style := Styles.Box
	switch icon {
	case IconError:
		style = Styles.ErrorBox
	case IconWarning:
		style = Styles.WarnBox
	}
	fmt.Fprintln(p.out, style.Render(Styles.Bold.Render(title)+"\n"+strings.TrimRight(content, "\n")))
}

// Summary prints a count line such as "2 errors  1 warning  0 notices".
func (p *Printer) Summary(errors, warnings, notices int) {
	if p.level == PersonalityMachine {
		fmt.Fprintf(p.out, "SUMMARY: errors=%d warnings=%d notices=%d\n", errors, warnings, notices)
		return
	}
	fmt.Fprintf(p.out, "\n%s %s  %s %s  %s %s\n",
		Styles.Error.Render(fmt.Sprint(errors)), Styles.Muted.Render(plural(errors, "error")),
		Styles.Warning.Render(fmt.Sprint(warnings)), Styles.Muted.Render(plural(warnings, "warning")),
		Styles.Notify.Render(fmt.Sprint(notices)), Styles.Muted.Render(plural(notices, "notice")),
	)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
