/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package assembler turns approved breaks into an ordered segment plan and renders it.
package assembler

import (
	"math/rand"

	"github.com/friendsincode/telestar/internal/models"
)

const (
	// FillerChunk is the longest single filler clip.
	FillerChunk = 2.0
	// FillerThreshold is the remaining budget below which no more filler is emitted.
	FillerThreshold = 0.5
)

// Usage is the set of commercial paths already aired in the current program.
type Usage map[string]struct{}

// NewUsage returns an empty usage set. Start one per program.
func NewUsage() Usage { return Usage{} }

// Has reports whether path was already used.
func (u Usage) Has(path string) bool {
	_, ok := u[path]
	return ok
}

func (u Usage) clone() Usage {
	out := make(Usage, len(u))
	for k := range u {
		out[k] = struct{}{}
	}
	return out
}

// PlanRequest carries everything needed to plan one program slot.
type PlanRequest struct {
	Program        models.Program
	Breaks         []float64 // sorted, final entry is the program end
	PerBreak       float64
	Placement      models.BumperPlacement
	Pool           []models.Commercial
	Used           Usage
	Rng            *rand.Rand
	BumperDuration float64
}

// Plan is the ordered segment list for a program slot.
type Plan struct {
	Program  models.Program
	Segments []models.Segment
}

// Totals sums segment durations per kind.
type Totals struct {
	Program    float64
	Commercial float64
	Filler     float64
	Bumper     float64
}

// All is the full slot length covered by the plan.
func (t Totals) All() float64 {
	return t.Program + t.Commercial + t.Filler + t.Bumper
}

// Totals sums the plan by segment kind.
func (p Plan) Totals() Totals {
	var t Totals
	for _, s := range p.Segments {
		switch s.Kind {
		case models.SegmentProgramSlice:
			t.Program += s.Duration
		case models.SegmentCommercial:
			t.Commercial += s.Duration
		case models.SegmentFiller:
			t.Filler += s.Duration
		case models.SegmentMidBumper, models.SegmentEndBumper:
			t.Bumper += s.Duration
		}
	}
	return t
}

// Duration is the sum of all segment durations.
func (p Plan) Duration() float64 { return p.Totals().All() }

// Build lays out slices, bumpers, commercials and filler for every break.
// The returned Usage includes the commercials placed by this plan; req.Used is not modified.
// Leftover budget under FillerThreshold carries into the next break so the slot reconciles
// within FillerThreshold overall.
func Build(req PlanRequest) (Plan, Usage) {
	used := req.Used.clone()
	rng := req.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	plan := Plan{Program: req.Program}
	emit := func(seg models.Segment) { plan.Segments = append(plan.Segments, seg) }

	mid := req.Placement.MidIndex()
	last := 0.0
	carry := 0.0
	for i, b := range req.Breaks {
		if b > last {
			emit(models.Segment{Kind: models.SegmentProgramSlice, Source: req.Program.Path, Start: last, Duration: b - last, Break: i})
		}
		if i == mid {
			emit(models.Segment{Kind: models.SegmentMidBumper, Duration: req.BumperDuration, Break: i})
		}

		remaining := req.PerBreak + carry
		for _, c := range pack(req.Pool, used, remaining, rng) {
			emit(models.Segment{Kind: models.SegmentCommercial, Source: c.Path, Duration: c.Duration, Break: i})
			used[c.Path] = struct{}{}
			remaining -= c.Duration
		}
		for remaining > FillerThreshold {
			chunk := min(FillerChunk, remaining)
			emit(models.Segment{Kind: models.SegmentFiller, Duration: chunk, Break: i})
			remaining -= chunk
		}
		carry = max(remaining, 0)
		last = b
	}

	if d := req.Program.ActualDuration; d > last {
		emit(models.Segment{Kind: models.SegmentProgramSlice, Source: req.Program.Path, Start: last, Duration: d - last, Break: len(req.Breaks)})
	}
	emit(models.Segment{Kind: models.SegmentEndBumper, Duration: req.BumperDuration, Break: -1})
	return plan, used
}

// pack greedily picks unused commercials that fit the budget.
// Candidates too long for what remains are dropped for this break only.
func pack(pool []models.Commercial, used Usage, budget float64, rng *rand.Rand) []models.Commercial {
	if budget <= 0 {
		return nil
	}
	available := make([]models.Commercial, 0, len(pool))
	for _, c := range pool {
		if !used.Has(c.Path) && c.Duration > 0 {
			available = append(available, c)
		}
	}
	rng.Shuffle(len(available), func(i, j int) { available[i], available[j] = available[j], available[i] })

	var picked []models.Commercial
	seen := make(map[string]struct{}, len(available))
	remaining := budget
	for len(available) > 0 && remaining > 0 {
		c := available[0]
		available = available[1:]
		if _, dup := seen[c.Path]; dup {
			continue
		}
		if c.Duration <= remaining {
			picked = append(picked, c)
			seen[c.Path] = struct{}{}
			remaining -= c.Duration
		}
	}
	return picked
}
