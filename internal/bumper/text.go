/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package bumper composes and renders station-identification cards.
package bumper

import (
	"strings"

	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
)

// WrapWidth is the line length at which a title moves below its prefix.
const WrapWidth = 25

// MinLines is the minimum number of rows on a card.
const MinLines = 3

// WrapLine joins prefix and title as "prefix - title", or on two rows when that is WrapWidth or longer.
func WrapLine(prefix, title string) string {
	line := prefix + " - " + title
	if len(line) >= WrapWidth {
		return prefix + "\n" + title
	}
	return line
}

// Composer builds card text from the day schedule.
type Composer struct {
	ZoneLabel string // appended to listing times, e.g. "CET"
	SignOff   string // shown on the final end card
}

// Mid returns the "Now Playing" card for title followed by the next two schedule entries.
func (c Composer) Mid(title string, entries []schedule.Entry) string {
	if title == "" {
		title = "UNKNOWN"
	}
	idx := FindIndex(title, entries)
	lines := []string{WrapLine("Now Playing", title)}
	lines = c.listing(lines, entries, idx+1)
	return strings.Join(pad(lines, false), "\n")
}

// End returns the "Next" card for the entry after title, or the sign-off when the block is ending.
func (c Composer) End(title string, entries []schedule.Entry) string {
	idx := FindIndex(title, entries)
	if idx+1 >= len(entries) || entries[idx+1].Title == models.OffAir {
		return strings.Join(pad([]string{c.SignOff}, true), "\n")
	}

	next := entries[idx+1].Title
	if next == "" {
		next = models.OffAir
	}
	lines := []string{WrapLine("Next", next)}
	lines = c.listing(lines, entries, idx+2)
	return strings.Join(pad(lines, false), "\n")
}

// listing appends up to two schedule rows starting at entries[from].
func (c Composer) listing(lines []string, entries []schedule.Entry, from int) []string {
	for i := from; i < from+2 && i < len(entries); i++ {
		e := entries[i]
		start := e.StartTime
		if start == "" {
			start = "??:??"
		}
		title := e.Title
		if title == "" {
			title = models.OffAir
		}
		if title == models.OffAir && lines[len(lines)-1] == models.OffAir {
			continue
		}

		prefix := start
		if c.ZoneLabel != "" {
			prefix += " " + c.ZoneLabel
		}
		lines = append(lines, WrapLine(prefix, title))
	}
	return lines
}

func pad(lines []string, final bool) []string {
	for len(lines) < MinLines {
		last := lines[len(lines)-1]
		switch {
		case final, strings.Contains(last, models.OffAir):
			lines = append(lines, "")
		default:
			lines = append(lines, models.OffAir)
		}
	}
	return lines
}

// FindIndex locates title in the schedule ignoring case and surrounding space. Unknown titles map to 0.
func FindIndex(title string, entries []schedule.Entry) int {
	want := strings.ToLower(strings.TrimSpace(title))
	for i, e := range entries {
		if strings.ToLower(strings.TrimSpace(e.Title)) == want {
			return i
		}
	}
	return 0
}
