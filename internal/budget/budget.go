/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package budget converts a slot's spare time into per-break commercial time.
package budget

// Allocation is the commercial time available in a program slot.
type Allocation struct {
	TotalCommercial float64 // seconds across all breaks
	PerBreak        float64 // seconds per break
	Breaks          int
}

// Allocate splits the time left after the program and both bumpers evenly across breaks.
// It is recomputed whenever the break count changes and never cached.
func Allocate(actualDuration, slotDuration float64, numBreaks int, bumperDuration float64) Allocation {
	total := slotDuration - actualDuration - 2*bumperDuration
	if total < 0 {
		total = 0
	}

	alloc := Allocation{TotalCommercial: total, Breaks: numBreaks}
	if numBreaks > 0 {
		alloc.PerBreak = total / float64(numBreaks)
	}
	return alloc
}

// PerBreakSlice returns the per-break budget as a slice, one entry per break.
func (a Allocation) PerBreakSlice() []float64 {
	if a.Breaks <= 0 {
		return nil
	}
	out := make([]float64, a.Breaks)
	for i := range out {
		out[i] = a.PerBreak
	}
	return out
}
