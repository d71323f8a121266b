/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package editor

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/friendsincode/telestar/internal/models"
)

type stubDetector struct {
	result []float64
	calls  int
}

func (s *stubDetector) Detect(ctx context.Context, path string, duration float64) []float64 {
	s.calls++
	return s.result
}

func testProgram() models.Program {
	return models.Program{Order: 1, Title: "Show A", Path: "/media/show_a.mp4", ActualDuration: 1500, SlotDuration: 1800}
}

func TestNewForcesProgramEnd(t *testing.T) {
	e := New(testProgram(), []float64{700, 300}, 5, nil)
	if got, want := e.Breaks(), []float64{300, 700, 1500}; !reflect.DeepEqual(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
	if e.State() != EditingBreaks {
		t.Fatalf("state = %s", e.State())
	}
	if e.Placement().Mid != nil {
		t.Fatal("mid should be unset before approval")
	}
}

func TestFullReviewFlow(t *testing.T) {
	e := New(testProgram(), []float64{300, 700}, 5, nil)

	if err := e.Approve(); err != nil {
		t.Fatalf("approve breaks: %v", err)
	}
	if e.State() != EditingMidBumper {
		t.Fatalf("state = %s", e.State())
	}
	if got := e.Placement().MidIndex(); got != 1 {
		t.Fatalf("auto mid = %d, want 1", got)
	}

	if err := e.Add(1000); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("add in mid state: got %v", err)
	}

	if err := e.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if got := e.Placement().MidIndex(); got != 1 {
		t.Fatalf("back should keep mid, got %d", got)
	}

	if err := e.Add(1000); err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.Placement().Mid != nil {
		t.Fatal("add should clear mid")
	}
	if err := e.Remove(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, want := e.Breaks(), []float64{700, 1000, 1500}; !reflect.DeepEqual(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}

	if err := e.Approve(); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMid(3); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("set mid out of range: got %v", err)
	}
	if err := e.SetMid(2); err != nil {
		t.Fatalf("set mid: %v", err)
	}
	if _, err := e.Result(); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("result before done: got %v", err)
	}
	if err := e.Approve(); err != nil {
		t.Fatal(err)
	}

	res, err := e.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Placement.MidIndex() != 1 || !res.Placement.End {
		t.Fatalf("placement = %+v", res.Placement)
	}
	// (1800 - 1500 - 10) / 3
	if want := 290.0 / 3; res.CommercialPerBreak != want {
		t.Fatalf("per break = %v, want %v", res.CommercialPerBreak, want)
	}
	if err := e.Approve(); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("approve when done: got %v", err)
	}
}

func TestRemovingEndIsReappended(t *testing.T) {
	e := New(testProgram(), []float64{400}, 5, nil)
	if err := e.Remove(1); err != nil {
		t.Fatal(err)
	}
	if got, want := e.Breaks(), []float64{400, 1500}; !reflect.DeepEqual(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestInvalidEdits(t *testing.T) {
	e := New(testProgram(), []float64{400}, 5, nil)
	tests := []struct {
		name string
		fn   func() error
	}{
		{"add zero", func() error { return e.Add(0) }},
		{"add past end", func() error { return e.Add(1600) }},
		{"remove out of range", func() error { return e.Remove(5) }},
		{"remove negative", func() error { return e.Remove(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, models.ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
			if got, want := e.Breaks(), []float64{400, 1500}; !reflect.DeepEqual(got, want) {
				t.Fatalf("breaks changed to %v", got)
			}
		})
	}
}

func TestRescan(t *testing.T) {
	det := &stubDetector{result: []float64{250, 900}}
	e := New(testProgram(), []float64{400}, 5, det)
	if err := e.Rescan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if det.calls != 1 {
		t.Fatalf("detector calls = %d", det.calls)
	}
	if got, want := e.Breaks(), []float64{250, 900, 1500}; !reflect.DeepEqual(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}

	noDet := New(testProgram(), nil, 5, nil)
	if err := noDet.Rescan(context.Background()); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("rescan without detector: got %v", err)
	}
}

func TestResetMid(t *testing.T) {
	e := New(testProgram(), []float64{300, 700}, 5, nil)
	_ = e.Approve()
	if err := e.SetMid(1); err != nil {
		t.Fatal(err)
	}
	if err := e.ResetMid(); err != nil {
		t.Fatal(err)
	}
	if got := e.Placement().MidIndex(); got != 1 {
		t.Fatalf("mid = %d, want 1", got)
	}
}

func TestNearestToMidpointTiesPickLowest(t *testing.T) {
	if got := NearestToMidpoint([]float64{700, 800, 1500}, 1500); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	if got := NearestToMidpoint(nil, 1500); got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
}

func TestTimelineWidth(t *testing.T) {
	tests := []struct {
		name string
		in   TimelineInput
	}{
		{"two breaks", TimelineInput{ProgramDuration: 1500, SlotDuration: 1800, Breaks: []float64{700, 1500}, Mid: 0, BumperDuration: 5, Width: 80}},
		{"overrun", TimelineInput{ProgramDuration: 1900, SlotDuration: 1800, Breaks: []float64{1900}, Mid: -1, BumperDuration: 5, Width: 80}},
		{"narrow", TimelineInput{ProgramDuration: 1234, SlotDuration: 1800, Breaks: []float64{200, 600, 900, 1234}, Mid: 1, BumperDuration: 5, Width: 33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderTimeline(tt.in)
			row := strings.SplitN(out, "\n", 2)[0]
			if len(row) != tt.in.Width {
				t.Fatalf("row width = %d, want %d: %q", len(row), tt.in.Width, row)
			}
		})
	}
}

func TestTimelineMarksMidBumper(t *testing.T) {
	e := New(testProgram(), []float64{300, 700}, 5, nil)
	out := e.Timeline(80)
	if !strings.Contains(out, "2. 11:40  <- mid bumper") {
		t.Fatalf("missing mid marker:\n%s", out)
	}
	if !strings.HasPrefix(out, "#") {
		t.Fatalf("row should start with program glyph: %q", out)
	}
}
