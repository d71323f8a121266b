/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"errors"
	"fmt"
)

// OffAir is the schedule sentinel that closes a broadcast block.
const OffAir = "OFF AIR"

var (
	// ErrInvalidInput reports malformed operator input. Callers re-prompt or keep the previous value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition reports an operation that is not allowed in the current editor state.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Program is a source video scheduled into the block.
type Program struct {
	Order          int
	Title          string
	Path           string
	ActualDuration float64 // seconds, exact file length
	SlotDuration   int     // seconds, multiple of the slot size
	StartTime      string  // wall clock "HH:MM"
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(%d, %q, start=%s)", p.Order, p.Title, p.StartTime)
}

// Commercial is a candidate clip for break packing.
type Commercial struct {
	Path     string
	Title    string
	Duration float64
}

// SegmentKind enumerates the pieces a program slot is built from.
type SegmentKind string

const (
	SegmentProgramSlice SegmentKind = "program_slice"
	SegmentMidBumper    SegmentKind = "mid_bumper"
	SegmentEndBumper    SegmentKind = "end_bumper"
	SegmentCommercial   SegmentKind = "commercial"
	SegmentFiller       SegmentKind = "filler"
)

// Segment is one entry of the ordered output for a program slot.
// Source is the file path for slices and commercials and empty for generated clips.
type Segment struct {
	Kind     SegmentKind
	Source   string
	Start    float64 // offset into Source, program slices only
	Duration float64
	Break    int // index of the break this segment belongs to, -1 for the end bumper
}

// BumperPlacement records where bumpers go. Mid is nil until derived.
type BumperPlacement struct {
	Mid *int
	End bool
}

// MidIndex returns the mid bumper break index, or -1 when unset.
func (b BumperPlacement) MidIndex() int {
	if b.Mid == nil {
		return -1
	}
	return *b.Mid
}
