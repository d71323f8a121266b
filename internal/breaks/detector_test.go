/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package breaks

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

type stubSampler struct {
	dark []float64
	err  error
}

func (s stubSampler) SampleDarkFrames(context.Context, string, float64, float64) ([]float64, error) {
	return s.dark, s.err
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDetectFallbackOnlyWhenNoDarkFrames(t *testing.T) {
	d := NewDetector(stubSampler{}, DefaultOptions(), zerolog.Nop())

	got := d.Detect(context.Background(), "show.mp4", 1200)
	want := []float64{240, 480, 720, 960}
	if !equalFloats(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestDetectDegradesWhenSamplerFails(t *testing.T) {
	d := NewDetector(stubSampler{err: errors.New("ffmpeg missing")}, DefaultOptions(), zerolog.Nop())

	got := d.Detect(context.Background(), "show.mp4", 1200)
	if !equalFloats(got, []float64{240, 480, 720, 960}) {
		t.Fatalf("breaks = %v, want fallback-only sequence", got)
	}
}

func TestDetectNilSampler(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), zerolog.Nop())
	if got := d.Detect(context.Background(), "show.mp4", 1200); len(got) != 4 {
		t.Fatalf("breaks = %v, want 4 fallbacks", got)
	}
}

func TestCluster(t *testing.T) {
	tests := []struct {
		name string
		dark []float64
		want []float64
	}{
		{"separate regions", []float64{100, 101, 102, 103, 300, 301, 305, 306}, []float64{100, 103, 300, 305}},
		{"long region spaced from last kept", []float64{100, 101, 102, 103}, []float64{100, 103}},
		{"unsorted input", []float64{306, 100, 305, 300}, []float64{100, 300, 305}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cluster(tt.dark, 2.0)
			if !equalFloats(got, tt.want) {
				t.Fatalf("clusters = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLongDarkRegionAcrossMinGap(t *testing.T) {
	var dark []float64
	for s := 140.0; s <= 160; s++ {
		dark = append(dark, s)
	}
	opts := DefaultOptions()
	opts.MaxBreaks = 1

	// Candidates 140,143,...,158; the first at or past MinGap wins.
	got := Compute(dark, 1200, opts)
	if want := []float64{152}; !equalFloats(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestComputeUsesDarkFramesThenFallback(t *testing.T) {
	dark := []float64{
		50,            // too close to start
		200, 201, 202, // region -> 200
		260,    // within min gap of 200
		420,    // accepted
		1199.5, // inside the skipped tail
	}
	got := Compute(dark, 1200, DefaultOptions())

	// 200 and 420 from dark frames; fallbacks 240 and 480 collide, 720 and 960 fit.
	want := []float64{200, 420, 720, 960}
	if !equalFloats(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestComputeStopsAtMaxBreaks(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxBreaks = 2
	got := Compute([]float64{160, 400, 700, 900}, 1200, opts)
	if !equalFloats(got, []float64{160, 400}) {
		t.Fatalf("breaks = %v", got)
	}
}

func TestComputeShortProgramCapsFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.MinGap = 10
	got := Compute(nil, 20, opts)
	for _, b := range got {
		if b > 18 {
			t.Fatalf("break %v beyond end margin in %v", b, got)
		}
	}
}

func TestDetectedBreaksProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	opts := DefaultOptions()

	for trial := 0; trial < 200; trial++ {
		duration := 300 + rng.Float64()*3300
		var dark []float64
		for i := 0; i < rng.Intn(40); i++ {
			dark = append(dark, rng.Float64()*duration)
		}

		got := WithEnd(Compute(dark, duration, opts), duration)
		if got[len(got)-1] != duration {
			t.Fatalf("trial %d: last break %v, want %v", trial, got[len(got)-1], duration)
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Fatalf("trial %d: not strictly increasing: %v", trial, got)
			}
			if i < len(got)-1 && got[i]-got[i-1] < opts.MinGap {
				t.Fatalf("trial %d: gap below min between %v and %v", trial, got[i-1], got[i])
			}
		}
	}
}

func TestWithEnd(t *testing.T) {
	if got := WithEnd([]float64{100, 200}, 300); !equalFloats(got, []float64{100, 200, 300}) {
		t.Fatalf("WithEnd appended = %v", got)
	}
	if got := WithEnd([]float64{300, 100}, 300); !equalFloats(got, []float64{100, 300}) {
		t.Fatalf("WithEnd existing = %v", got)
	}
}
