/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule maintains the day-level running order of a broadcast block.
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/models"
)

// MaxPlaceholders is the most placeholders accepted in one call.
const MaxPlaceholders = 3

// PlaceholderDurations is the duration menu for placeholders, in seconds.
var PlaceholderDurations = []int{1800, 3600, 5400, 7200}

// Entry is one row of the running order.
type Entry struct {
	StartTime string // "HH:MM"
	Title     string
	Duration  int // seconds, 0 for OFF AIR
}

// IsOffAir reports whether the entry is the block-closing sentinel.
func (e Entry) IsOffAir() bool { return e.Title == models.OffAir }

// Placeholder is a non-program entry such as a live segment or an externally supplied show.
type Placeholder struct {
	Title    string
	Duration int // one of PlaceholderDurations
}

// Builder edits the running order. Start times are recomputed after every structural edit.
type Builder struct {
	start    time.Time
	entries  []Entry
	programs []models.Program
}

// NewBuilder lays programs out back to back from start.
func NewBuilder(start time.Time, programs []models.Program) *Builder {
	b := &Builder{
		start:    start,
		programs: slices.Clone(programs),
	}
	for _, p := range programs {
		b.entries = append(b.entries, Entry{Title: p.Title, Duration: p.SlotDuration})
	}
	b.recompute()
	return b
}

// Start is the block start.
func (b *Builder) Start() time.Time { return b.start }

// End is the block start plus every entry's duration.
func (b *Builder) End() time.Time {
	end := b.start
	for _, e := range b.entries {
		end = end.Add(time.Duration(e.Duration) * time.Second)
	}
	return end
}

// Entries returns a copy of the running order.
func (b *Builder) Entries() []Entry { return slices.Clone(b.entries) }

// EditTitle renames entry index (zero-based). A program with the old title is renamed with it.
func (b *Builder) EditTitle(index int, title string) error {
	if index < 0 || index >= len(b.entries) {
		return fmt.Errorf("%w: line %d out of range", models.ErrInvalidInput, index+1)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: empty title", models.ErrInvalidInput)
	}
	if b.entries[index].IsOffAir() {
		return fmt.Errorf("%w: cannot rename %s", models.ErrInvalidInput, models.OffAir)
	}

	old := b.entries[index].Title
	b.entries[index].Title = title
	for i := range b.programs {
		if b.programs[i].Title == old {
			b.programs[i].Title = title
			break
		}
	}
	return nil
}

// Delete removes entries by zero-based index. OFF AIR entries cannot be deleted.
func (b *Builder) Delete(indices ...int) error {
	drop := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(b.entries) {
			return fmt.Errorf("%w: line %d out of range", models.ErrInvalidInput, idx+1)
		}
		if b.entries[idx].IsOffAir() {
			return fmt.Errorf("%w: cannot delete %s", models.ErrInvalidInput, models.OffAir)
		}
		drop[idx] = struct{}{}
	}

	kept := b.entries[:0:0]
	for i, e := range b.entries {
		if _, ok := drop[i]; !ok {
			kept = append(kept, e)
		}
	}
	b.entries = kept
	b.recompute()
	return nil
}

// AddPlaceholders appends up to MaxPlaceholders entries before any OFF AIR sentinel.
func (b *Builder) AddPlaceholders(ps ...Placeholder) error {
	if len(ps) == 0 || len(ps) > MaxPlaceholders {
		return fmt.Errorf("%w: between 1 and %d placeholders", models.ErrInvalidInput, MaxPlaceholders)
	}
	added := make([]Entry, 0, len(ps))
	for i, p := range ps {
		if !slices.Contains(PlaceholderDurations, p.Duration) {
			return fmt.Errorf("%w: placeholder duration %ds not in menu", models.ErrInvalidInput, p.Duration)
		}
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = fmt.Sprintf("Placeholder %d", i+1)
		}
		added = append(added, Entry{Title: title, Duration: p.Duration})
	}

	at := len(b.entries)
	for at > 0 && b.entries[at-1].IsOffAir() {
		at--
	}
	b.entries = slices.Insert(b.entries, at, added...)
	b.recompute()
	return nil
}

// Reorder applies a zero-based permutation of the non-OFF AIR entries.
func (b *Builder) Reorder(order []int) error {
	var body, tail []Entry
	for _, e := range b.entries {
		if e.IsOffAir() {
			tail = append(tail, e)
		} else {
			body = append(body, e)
		}
	}
	if len(order) != len(body) {
		return fmt.Errorf("%w: order lists %d entries, schedule has %d", models.ErrInvalidInput, len(order), len(body))
	}

	seen := make([]bool, len(body))
	reordered := make([]Entry, 0, len(b.entries))
	for _, idx := range order {
		if idx < 0 || idx >= len(body) || seen[idx] {
			return fmt.Errorf("%w: order is not a permutation", models.ErrInvalidInput)
		}
		seen[idx] = true
		reordered = append(reordered, body[idx])
	}
	b.entries = append(reordered, tail...)
	b.recompute()
	return nil
}

// Finalize closes the block with OFF AIR and returns the running order and the programs
// it contains, in schedule order with synced start times. Entries whose titles match no
// program are placeholders and are left out of the program list.
func (b *Builder) Finalize() ([]Entry, []models.Program) {
	b.recompute()
	if n := len(b.entries); n == 0 || !b.entries[n-1].IsOffAir() {
		b.entries = append(b.entries, Entry{StartTime: clock.Wall(b.End()), Title: models.OffAir})
	}

	byTitle := make(map[string][]int, len(b.programs))
	for i, p := range b.programs {
		byTitle[p.Title] = append(byTitle[p.Title], i)
	}

	var ordered []models.Program
	for _, e := range b.entries {
		if e.IsOffAir() {
			continue
		}
		idxs := byTitle[e.Title]
		if len(idxs) == 0 {
			continue
		}
		p := b.programs[idxs[0]]
		byTitle[e.Title] = idxs[1:]
		p.StartTime = e.StartTime
		p.Order = len(ordered) + 1
		ordered = append(ordered, p)
	}
	return b.Entries(), ordered
}

// recompute assigns start times by a forward scan from the block start.
func (b *Builder) recompute() {
	cur := b.start
	for i := range b.entries {
		b.entries[i].StartTime = clock.Wall(cur)
		cur = cur.Add(time.Duration(b.entries[i].Duration) * time.Second)
	}
}
