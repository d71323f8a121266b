/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package breaks derives commercial break points from dark-frame samples,
// topping up with evenly spaced fallbacks.
package breaks

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// Sampler returns timestamps of unusually dark frames.
type Sampler interface {
	SampleDarkFrames(ctx context.Context, path string, interval, threshold float64) ([]float64, error)
}

// Options tunes detection.
type Options struct {
	MinGap         float64 // seconds between accepted breaks
	MaxBreaks      int
	SampleInterval float64
	DarkThreshold  float64
	ClusterGap     float64 // dark frames closer than this belong to one region
	EndMargin      float64 // no break closer than this to the end
	TailSkip       float64 // sampled frames this close to the end are ignored
}

// DefaultOptions returns the standard detection settings.
func DefaultOptions() Options {
	return Options{
		MinGap:         150,
		MaxBreaks:      4,
		SampleInterval: 1.0,
		DarkThreshold:  15,
		ClusterGap:     2.0,
		EndMargin:      2.0,
		TailSkip:       1.0,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MinGap < 0 {
		o.MinGap = def.MinGap
	}
	if o.MaxBreaks < 0 {
		o.MaxBreaks = def.MaxBreaks
	}
	if o.SampleInterval <= 0 {
		o.SampleInterval = def.SampleInterval
	}
	if o.ClusterGap <= 0 {
		o.ClusterGap = def.ClusterGap
	}
	if o.EndMargin < 0 {
		o.EndMargin = def.EndMargin
	}
	if o.TailSkip < 0 {
		o.TailSkip = def.TailSkip
	}
	return o
}

// Detector finds break points for a program.
type Detector struct {
	sampler Sampler
	opts    Options
	logger  zerolog.Logger
}

// NewDetector creates a detector. A nil sampler yields fallback-only breaks.
func NewDetector(sampler Sampler, opts Options, logger zerolog.Logger) *Detector {
	return &Detector{
		sampler: sampler,
		opts:    opts.withDefaults(),
		logger:  logger.With().Str("component", "break_detector").Logger(),
	}
}

// Options returns the effective detection settings.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect returns sorted break points for the file at path. Sampler failures
// degrade to evenly spaced fallbacks and are never returned.
func (d *Detector) Detect(ctx context.Context, path string, duration float64) []float64 {
	var dark []float64
	if d.sampler != nil {
		sampled, err := d.sampler.SampleDarkFrames(ctx, path, d.opts.SampleInterval, d.opts.DarkThreshold)
		if err != nil {
			d.logger.Warn().Err(err).Str("path", path).Msg("frame sampling failed, using fallback breaks")
		} else {
			dark = sampled
		}
	}

	breaks := Compute(dark, duration, d.opts)
	d.logger.Debug().
		Str("path", path).
		Int("dark_frames", len(dark)).
		Floats64("breaks", breaks).
		Msg("break detection complete")
	return breaks
}

// Compute runs the pure detection pipeline on raw dark timestamps.
func Compute(dark []float64, duration float64, opts Options) []float64 {
	opts = opts.withDefaults()
	if duration <= 0 {
		return nil
	}

	usable := make([]float64, 0, len(dark))
	for _, t := range dark {
		if t >= 0 && t < duration-opts.TailSkip {
			usable = append(usable, t)
		}
	}

	chosen := Select(Cluster(usable, opts.ClusterGap), duration, opts)
	chosen = Fallback(chosen, duration, opts)
	return normalize(chosen, duration)
}

// Cluster thins dark timestamps into break candidates. A timestamp is kept
// when it is more than gap after the previously kept one, so a long dark
// region yields a candidate every gap seconds.
func Cluster(dark []float64, gap float64) []float64 {
	sorted := append([]float64(nil), dark...)
	sort.Float64s(sorted)

	var clustered []float64
	prev := math.Inf(-1)
	for _, t := range sorted {
		if t-prev > gap {
			clustered = append(clustered, t)
			prev = t
		}
	}
	return clustered
}

// Select greedily accepts candidates in chronological order, keeping MinGap
// from the previous accepted break (the first is measured from zero).
func Select(candidates []float64, duration float64, opts Options) []float64 {
	var chosen []float64
	last := 0.0
	for _, t := range candidates {
		if len(chosen) >= opts.MaxBreaks {
			break
		}
		if t-last >= opts.MinGap && t < duration-opts.EndMargin {
			chosen = append(chosen, t)
			last = t
		}
	}
	return chosen
}

// Fallback tops chosen up to MaxBreaks with evenly spaced breaks at
// duration/(MaxBreaks+1)*k, skipping any within MinGap of an accepted break.
func Fallback(chosen []float64, duration float64, opts Options) []float64 {
	out := append([]float64(nil), chosen...)
	if opts.MaxBreaks <= 0 {
		return out
	}

	step := duration / float64(opts.MaxBreaks+1)
	limit := duration - opts.EndMargin
	for k := 1; k <= opts.MaxBreaks && len(out) < opts.MaxBreaks; k++ {
		candidate := step * float64(k)
		if candidate >= limit {
			candidate = limit
		}
		if candidate <= 0 {
			continue
		}
		if farFromAll(candidate, out, opts.MinGap) {
			out = append(out, candidate)
		}
	}
	return out
}

func farFromAll(t float64, accepted []float64, gap float64) bool {
	for _, b := range accepted {
		if math.Abs(t-b) < gap {
			return false
		}
	}
	return true
}

// normalize clamps to duration, sorts and removes duplicates.
func normalize(breaks []float64, duration float64) []float64 {
	clamped := make([]float64, 0, len(breaks))
	for _, b := range breaks {
		clamped = append(clamped, math.Min(b, duration))
	}
	sort.Float64s(clamped)

	out := clamped[:0]
	for i, b := range clamped {
		if i > 0 && b == out[len(out)-1] {
			continue
		}
		out = append(out, b)
	}
	return out
}

// WithEnd appends duration as the final break when it is missing.
func WithEnd(breaks []float64, duration float64) []float64 {
	out := append([]float64(nil), breaks...)
	for _, b := range out {
		if b == duration {
			sort.Float64s(out)
			return out
		}
	}
	out = append(out, duration)
	sort.Float64s(out)
	return out
}
