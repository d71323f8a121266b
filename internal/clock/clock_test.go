/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package clock

import (
	"errors"
	"testing"

	"github.com/friendsincode/telestar/internal/models"
)

func TestRoundUpToSlot(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		slot     int
		want     int
	}{
		{"exact slot", 1800, 1800, 1800},
		{"just under", 1500, 1800, 1800},
		{"just over", 1800.5, 1800, 3600},
		{"hour and a bit", 3700, 1800, 5400},
		{"zero duration", 0, 1800, 1800},
		{"default slot", 100, 0, 1800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundUpToSlot(tt.duration, tt.slot); got != tt.want {
				t.Fatalf("RoundUpToSlot(%v, %d) = %d, want %d", tt.duration, tt.slot, got, tt.want)
			}
		})
	}
}

func TestFormatAndParseTimestamp(t *testing.T) {
	if got := FormatTimestamp(754.9); got != "12:34" {
		t.Fatalf("FormatTimestamp = %q, want 12:34", got)
	}
	if got := FormatTimestamp(3725); got != "62:05" {
		t.Fatalf("FormatTimestamp = %q, want 62:05", got)
	}

	got, err := ParseTimestamp("12:34")
	if err != nil || got != 754 {
		t.Fatalf("ParseTimestamp(12:34) = %v, %v", got, err)
	}
	got, err = ParseTimestamp(" 95.5 ")
	if err != nil || got != 95.5 {
		t.Fatalf("ParseTimestamp(95.5) = %v, %v", got, err)
	}

	for _, bad := range []string{"", "aa:10", "10:75", "-3", "abc"} {
		if _, err := ParseTimestamp(bad); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("ParseTimestamp(%q) error = %v, want ErrInvalidInput", bad, err)
		}
	}
}

func TestWallArithmetic(t *testing.T) {
	if got := Wall(BlockStart(7)); got != "07:00" {
		t.Fatalf("BlockStart(7) = %s", got)
	}
	if got := Wall(BlockStart(42)); got != "18:00" {
		t.Fatalf("BlockStart(42) = %s, want fallback 18:00", got)
	}

	got, err := AddWall("23:30", 3600)
	if err != nil {
		t.Fatalf("AddWall: %v", err)
	}
	if got != "00:30" {
		t.Fatalf("AddWall wrapped = %s, want 00:30", got)
	}

	if _, err := AddWall("25:99", 60); err == nil {
		t.Fatal("expected error for invalid wall clock")
	}
}
