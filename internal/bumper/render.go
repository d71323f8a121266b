/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package bumper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/telestar/internal/mediaengine"
)

// Renderer turns card text into a ready clip and returns its path.
type Renderer interface {
	Render(ctx context.Context, text, outputPath string) (string, error)
}

// CardMaker is the media surface the card renderer needs.
type CardMaker interface {
	TitleCard(ctx context.Context, out string, card mediaengine.Card) error
	ApplyAnalogFilter(ctx context.Context, in, out, preset string) error
}

// Options configures card appearance.
type Options struct {
	Station      string
	Duration     float64
	Spec         mediaengine.ClipSpec
	FontFile     string
	FontSize     int
	Background   string
	Foreground   string
	MusicPath    string
	AnalogPreset string
}

// CardRenderer renders cards with ffmpeg drawtext and an optional ntsc-rs pass.
type CardRenderer struct {
	maker  CardMaker
	opts   Options
	logger zerolog.Logger
}

// NewCardRenderer creates a card renderer. Missing music or preset files are skipped with a warning.
func NewCardRenderer(maker CardMaker, opts Options, logger zerolog.Logger) *CardRenderer {
	logger = logger.With().Str("component", "bumper").Logger()
	if opts.MusicPath != "" && !exists(opts.MusicPath) {
		logger.Warn().Str("path", opts.MusicPath).Msg("bumper music not found, using silence")
		opts.MusicPath = ""
	}
	if opts.AnalogPreset != "" && !exists(opts.AnalogPreset) {
		logger.Warn().Str("path", opts.AnalogPreset).Msg("analog preset not found, skipping filter")
		opts.AnalogPreset = ""
	}
	return &CardRenderer{maker: maker, opts: opts, logger: logger}
}

// Render writes the card to outputPath.
func (r *CardRenderer) Render(ctx context.Context, text, outputPath string) (string, error) {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	textFile := base + ".txt"
	if err := os.WriteFile(textFile, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write card text: %w", err)
	}
	defer os.Remove(textFile)

	card := mediaengine.Card{
		Header:     r.opts.Station,
		TextFile:   textFile,
		Background: r.opts.Background,
		Foreground: r.opts.Foreground,
		FontFile:   r.opts.FontFile,
		FontSize:   r.opts.FontSize,
		MusicPath:  r.opts.MusicPath,
		Duration:   r.opts.Duration,
		Spec:       r.opts.Spec,
	}

	if r.opts.AnalogPreset == "" {
		if err := r.maker.TitleCard(ctx, outputPath, card); err != nil {
			return "", err
		}
		return outputPath, nil
	}

	clean := base + "_clean" + filepath.Ext(outputPath)
	defer os.Remove(clean)
	if err := r.maker.TitleCard(ctx, clean, card); err != nil {
		return "", err
	}
	if err := r.maker.ApplyAnalogFilter(ctx, clean, outputPath, r.opts.AnalogPreset); err != nil {
		return "", err
	}
	r.logger.Debug().Str("output", outputPath).Msg("analog filter applied")
	return outputPath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
