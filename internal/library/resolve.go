/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abema/go-mp4"
	"github.com/rs/zerolog"
	"github.com/sunfish-shogi/bufseekio"

	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/models"
)

// Fallback durations used when probing fails.
const (
	DefaultProgramDuration    = 1800.0
	DefaultCommercialDuration = 30.0
)

// Prober reads a media file's duration in seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// HeaderProber reads durations from ISO-BMFF (mp4/mov) headers and defers to Next for
// other containers or when the header carries no duration.
type HeaderProber struct {
	Next Prober
}

// ProbeDuration implements Prober.
func (h HeaderProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		if d, err := mp4Duration(path); err == nil {
			return d, nil
		}
	}
	if h.Next == nil {
		return 0, fmt.Errorf("no prober for %s", path)
	}
	return h.Next.ProbeDuration(ctx, path)
}

func mp4Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := mp4.Probe(bufseekio.NewReadSeeker(f, 1024, 4))
	if err != nil {
		return 0, err
	}
	if info.Timescale == 0 || info.Duration == 0 {
		return 0, fmt.Errorf("%s: no movie duration in header", path)
	}
	return float64(info.Duration) / float64(info.Timescale), nil
}

// Resolver probes durations once per path and rounds programs up to whole slots.
type Resolver struct {
	prober   Prober
	slotSize int
	cache    map[string]float64
	logger   zerolog.Logger
}

// NewResolver creates a resolver.
func NewResolver(prober Prober, slotSize int, logger zerolog.Logger) *Resolver {
	if slotSize <= 0 {
		slotSize = clock.DefaultSlotSize
	}
	return &Resolver{
		prober:   prober,
		slotSize: slotSize,
		cache:    make(map[string]float64),
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
}

// SlotSize is the slot granularity in seconds.
func (r *Resolver) SlotSize() int { return r.slotSize }

// Resolve returns the actual duration and the slot it occupies. Probe failures fall back to 1800s.
func (r *Resolver) Resolve(ctx context.Context, path string) (float64, int) {
	actual := r.duration(ctx, path, DefaultProgramDuration)
	return actual, clock.RoundUpToSlot(actual, r.slotSize)
}

// Programs resolves discovered files into programs ordered as given.
func (r *Resolver) Programs(ctx context.Context, files []File) []models.Program {
	programs := make([]models.Program, 0, len(files))
	for i, f := range files {
		actual, slot := r.Resolve(ctx, f.Path)
		programs = append(programs, models.Program{
			Order:          i + 1,
			Title:          f.Title,
			Path:           f.Path,
			ActualDuration: actual,
			SlotDuration:   slot,
		})
	}
	return programs
}

// Commercials resolves the commercial pool. Probe failures fall back to 30s.
func (r *Resolver) Commercials(ctx context.Context, files []File) []models.Commercial {
	pool := make([]models.Commercial, 0, len(files))
	for _, f := range files {
		pool = append(pool, models.Commercial{
			Path:     f.Path,
			Title:    f.Title,
			Duration: r.duration(ctx, f.Path, DefaultCommercialDuration),
		})
	}
	return pool
}

func (r *Resolver) duration(ctx context.Context, path string, fallback float64) float64 {
	if d, ok := r.cache[path]; ok {
		return d
	}
	d, err := r.prober.ProbeDuration(ctx, path)
	if err != nil || d <= 0 {
		r.logger.Warn().Err(err).Str("path", path).Float64("default", fallback).Msg("could not detect duration, using default")
		d = fallback
	}
	r.cache[path] = d
	return d
}
