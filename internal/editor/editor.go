/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package editor implements the operator review of break points and
// mid-bumper placement as an explicit state machine.
package editor

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/friendsincode/telestar/internal/breaks"
	"github.com/friendsincode/telestar/internal/budget"
	"github.com/friendsincode/telestar/internal/models"
)

// State is the editor's position in the review.
type State int

const (
	EditingBreaks State = iota
	EditingMidBumper
	Done
)

func (s State) String() string {
	switch s {
	case EditingBreaks:
		return "editing_breaks"
	case EditingMidBumper:
		return "editing_mid_bumper"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Rescanner re-runs break detection for a program.
type Rescanner interface {
	Detect(ctx context.Context, path string, duration float64) []float64
}

// Result is what an approved review yields.
type Result struct {
	Breaks             []float64
	CommercialPerBreak float64
	Placement          models.BumperPlacement
}

// Editor holds the review state for one program.
type Editor struct {
	program   models.Program
	bumper    float64
	breaks    []float64
	mid       *int
	state     State
	rescanner Rescanner
}

// New starts a review in EditingBreaks. The program end is always present as the final break.
func New(program models.Program, initial []float64, bumperDuration float64, rescanner Rescanner) *Editor {
	e := &Editor{
		program:   program,
		bumper:    bumperDuration,
		state:     EditingBreaks,
		rescanner: rescanner,
	}
	e.setBreaks(initial)
	return e
}

// State returns the current state.
func (e *Editor) State() State { return e.state }

// Program returns the program under review.
func (e *Editor) Program() models.Program { return e.program }

// Breaks returns a copy of the current break points.
func (e *Editor) Breaks() []float64 {
	return append([]float64(nil), e.breaks...)
}

// Placement returns the current bumper placement. Mid is nil after any change to the breaks.
func (e *Editor) Placement() models.BumperPlacement {
	p := models.BumperPlacement{End: true}
	if e.mid != nil {
		v := *e.mid
		p.Mid = &v
	}
	return p
}

// Allocation is recomputed from the current break count on every call.
func (e *Editor) Allocation() budget.Allocation {
	return budget.Allocate(e.program.ActualDuration, float64(e.program.SlotDuration), len(e.breaks), e.bumper)
}

// Approve advances EditingBreaks to EditingMidBumper and EditingMidBumper to Done.
func (e *Editor) Approve() error {
	switch e.state {
	case EditingBreaks:
		e.state = EditingMidBumper
		e.ensureMid()
		return nil
	case EditingMidBumper:
		e.ensureMid()
		e.state = Done
		return nil
	default:
		return fmt.Errorf("%w: approve in %s", models.ErrInvalidTransition, e.state)
	}
}

// Add inserts operator break points. Duplicates are ignored.
func (e *Editor) Add(timestamps ...float64) error {
	if err := e.require(EditingBreaks, "add"); err != nil {
		return err
	}
	for _, ts := range timestamps {
		if ts <= 0 || ts > e.program.ActualDuration || math.IsNaN(ts) {
			return fmt.Errorf("%w: break %v outside (0, %v]", models.ErrInvalidInput, ts, e.program.ActualDuration)
		}
	}
	e.setBreaks(append(e.Breaks(), timestamps...))
	e.mid = nil
	return nil
}

// Remove drops the breaks at the given zero-based indices. The program end is re-appended if removed.
func (e *Editor) Remove(indices ...int) error {
	if err := e.require(EditingBreaks, "remove"); err != nil {
		return err
	}
	drop := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(e.breaks) {
			return fmt.Errorf("%w: break index %d out of range", models.ErrInvalidInput, idx+1)
		}
		drop[idx] = struct{}{}
	}

	kept := make([]float64, 0, len(e.breaks))
	for i, b := range e.breaks {
		if _, ok := drop[i]; !ok {
			kept = append(kept, b)
		}
	}
	e.setBreaks(kept)
	e.mid = nil
	return nil
}

// Rescan replaces the breaks with a fresh detection run.
func (e *Editor) Rescan(ctx context.Context) error {
	if err := e.require(EditingBreaks, "rescan"); err != nil {
		return err
	}
	if e.rescanner == nil {
		return fmt.Errorf("%w: rescan without detector", models.ErrInvalidTransition)
	}
	e.setBreaks(e.rescanner.Detect(ctx, e.program.Path, e.program.ActualDuration))
	e.mid = nil
	return nil
}

// ResetMid re-derives the mid bumper as the break closest to the program midpoint.
func (e *Editor) ResetMid() error {
	if err := e.require(EditingMidBumper, "reset mid bumper"); err != nil {
		return err
	}
	e.mid = nil
	e.ensureMid()
	return nil
}

// SetMid places the mid bumper after commercial block number block (1-based, 1..breaks-1).
func (e *Editor) SetMid(block int) error {
	if err := e.require(EditingMidBumper, "set mid bumper"); err != nil {
		return err
	}
	if block < 1 || block > len(e.breaks)-1 {
		return fmt.Errorf("%w: commercial block %d not in 1-%d", models.ErrInvalidInput, block, len(e.breaks)-1)
	}
	idx := block - 1
	e.mid = &idx
	return nil
}

// Back returns to break editing, keeping breaks and mid placement.
func (e *Editor) Back() error {
	if err := e.require(EditingMidBumper, "back"); err != nil {
		return err
	}
	e.state = EditingBreaks
	return nil
}

// Result returns the approved review.
func (e *Editor) Result() (Result, error) {
	if e.state != Done {
		return Result{}, fmt.Errorf("%w: result requested in %s", models.ErrInvalidTransition, e.state)
	}
	return Result{
		Breaks:             e.Breaks(),
		CommercialPerBreak: e.Allocation().PerBreak,
		Placement:          e.Placement(),
	}, nil
}

// Timeline renders the proportional preview for the current state.
func (e *Editor) Timeline(width int) string {
	e.ensureMid()
	return RenderTimeline(TimelineInput{
		ProgramDuration: e.program.ActualDuration,
		SlotDuration:    float64(e.program.SlotDuration),
		Breaks:          e.breaks,
		Mid:             e.Placement().MidIndex(),
		BumperDuration:  e.bumper,
		Width:           width,
	})
}

func (e *Editor) require(state State, op string) error {
	if e.state != state {
		return fmt.Errorf("%w: %s in %s", models.ErrInvalidTransition, op, e.state)
	}
	return nil
}

// setBreaks sorts, de-duplicates and re-applies the program end invariant.
func (e *Editor) setBreaks(bs []float64) {
	sorted := append([]float64(nil), bs...)
	sort.Float64s(sorted)
	uniq := sorted[:0]
	for i, b := range sorted {
		if i > 0 && b == uniq[len(uniq)-1] {
			continue
		}
		uniq = append(uniq, b)
	}
	e.breaks = breaks.WithEnd(uniq, e.program.ActualDuration)
}

func (e *Editor) ensureMid() {
	if e.mid != nil || len(e.breaks) == 0 {
		return
	}
	idx := NearestToMidpoint(e.breaks, e.program.ActualDuration)
	e.mid = &idx
}

// NearestToMidpoint returns argmin |breaks[i] - duration/2|; ties resolve to the lowest index.
func NearestToMidpoint(bs []float64, duration float64) int {
	if len(bs) == 0 {
		return -1
	}
	midpoint := duration / 2
	best := 0
	bestDist := math.Abs(bs[0] - midpoint)
	for i := 1; i < len(bs); i++ {
		if d := math.Abs(bs[i] - midpoint); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
