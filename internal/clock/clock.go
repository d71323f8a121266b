/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package clock holds the slot and wall-clock arithmetic shared by the scheduler and the engine.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/telestar/internal/models"
)

// DefaultSlotSize is the broadcast slot granularity in seconds.
const DefaultSlotSize = 1800

const wallLayout = "15:04"

// RoundUpToSlot rounds a duration up to the next multiple of slotSize.
// Non-positive durations occupy one slot.
func RoundUpToSlot(duration float64, slotSize int) int {
	if slotSize <= 0 {
		slotSize = DefaultSlotSize
	}
	if duration <= 0 {
		return slotSize
	}
	slots := math.Ceil(duration / float64(slotSize))
	return int(slots) * slotSize
}

// FormatTimestamp renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseTimestamp accepts "mm:ss" or a plain number of seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty timestamp", models.ErrInvalidInput)
	}
	if mm, ss, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(strings.TrimSpace(mm))
		if err != nil || m < 0 {
			return 0, fmt.Errorf("%w: minutes in %q", models.ErrInvalidInput, s)
		}
		sec, err := strconv.Atoi(strings.TrimSpace(ss))
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: seconds in %q", models.ErrInvalidInput, s)
		}
		return float64(m*60 + sec), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: timestamp %q", models.ErrInvalidInput, s)
	}
	return v, nil
}

// BlockStart returns the wall-clock instant for a block starting at hour.
// Out-of-range hours fall back to 18:00.
func BlockStart(hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 18
	}
	return time.Date(2000, time.January, 1, hour, 0, 0, 0, time.UTC)
}

// Wall formats an instant as "HH:MM".
func Wall(t time.Time) string {
	return t.Format(wallLayout)
}

// AddWall adds seconds to a "HH:MM" string, wrapping past midnight.
func AddWall(wall string, seconds int) (string, error) {
	t, err := ParseWall(wall)
	if err != nil {
		return "", err
	}
	return Wall(t.Add(time.Duration(seconds) * time.Second)), nil
}

// ParseWall parses "HH:MM" onto the reference day used by BlockStart.
func ParseWall(wall string) (time.Time, error) {
	t, err := time.Parse(wallLayout, strings.TrimSpace(wall))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: wall clock %q", models.ErrInvalidInput, wall)
	}
	return time.Date(2000, time.January, 1, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
