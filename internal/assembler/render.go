/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/telestar/internal/bumper"
	"github.com/friendsincode/telestar/internal/mediaengine"
	"github.com/friendsincode/telestar/internal/models"
)

// Clip fades applied while conforming each segment kind.
const (
	ProgramFade    = 1.0
	BumperFade     = 0.5
	CommercialFade = 1.0
)

// RenderRequest is a plan plus the bumper text and destination for one program.
type RenderRequest struct {
	Plan          Plan
	MidBumperText string
	EndBumperText string
	OutputPath    string
}

// Renderer executes plans through the media engine.
type Renderer struct {
	media    mediaengine.Transformer
	bumpers  bumper.Renderer
	spec     mediaengine.ClipSpec
	tempRoot string
	logger   zerolog.Logger
}

// NewRenderer creates a renderer. Temp directories are created under tempRoot, or the system default when empty.
func NewRenderer(media mediaengine.Transformer, bumpers bumper.Renderer, spec mediaengine.ClipSpec, tempRoot string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		media:    media,
		bumpers:  bumpers,
		spec:     spec,
		tempRoot: tempRoot,
		logger:   logger.With().Str("component", "renderer").Logger(),
	}
}

// Render conforms every segment into a private temp directory, concatenates them into
// req.OutputPath and removes the temp directory whether or not rendering succeeded.
func (r *Renderer) Render(ctx context.Context, req RenderRequest) error {
	if r.tempRoot != "" {
		if err := os.MkdirAll(r.tempRoot, 0o755); err != nil {
			return fmt.Errorf("create temp root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(r.tempRoot, "telestar-program-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove temp dir")
		}
	}()

	title := req.Plan.Program.Title
	files := make([]string, 0, len(req.Plan.Segments))
	for i, seg := range req.Plan.Segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := filepath.Join(dir, fmt.Sprintf("%03d_%s.mp4", i, seg.Kind))
		if err := r.renderSegment(ctx, dir, i, seg, req, out); err != nil {
			return fmt.Errorf("segment %d (%s): %w", i, seg.Kind, err)
		}
		r.logger.Debug().
			Str("program", title).
			Int("index", i).
			Str("kind", string(seg.Kind)).
			Float64("duration", seg.Duration).
			Msg("segment rendered")
		files = append(files, out)
	}

	manifest := filepath.Join(dir, "concat_list.txt")
	if err := WriteManifest(manifest, files); err != nil {
		return err
	}
	if err := r.media.Concat(ctx, manifest, req.OutputPath); err != nil {
		return err
	}

	r.logger.Info().
		Str("program", title).
		Int("segments", len(files)).
		Str("output", req.OutputPath).
		Msg("program rendered")
	return nil
}

func (r *Renderer) renderSegment(ctx context.Context, dir string, i int, seg models.Segment, req RenderRequest, out string) error {
	switch seg.Kind {
	case models.SegmentProgramSlice:
		raw := filepath.Join(dir, fmt.Sprintf("%03d_raw.mp4", i))
		if err := r.media.Trim(ctx, seg.Source, raw, seg.Start, seg.Duration); err != nil {
			return err
		}
		return r.media.Conform(ctx, raw, out, r.spec.WithFades(ProgramFade, ProgramFade))

	case models.SegmentMidBumper, models.SegmentEndBumper:
		text := req.EndBumperText
		if seg.Kind == models.SegmentMidBumper {
			text = req.MidBumperText
		}
		raw := filepath.Join(dir, fmt.Sprintf("%03d_card.mp4", i))
		clip, err := r.bumpers.Render(ctx, text, raw)
		if err != nil {
			return err
		}
		return r.media.Conform(ctx, clip, out, r.spec.WithFades(BumperFade, BumperFade).WithMaxDuration(seg.Duration))

	case models.SegmentCommercial:
		return r.media.Conform(ctx, seg.Source, out, r.spec.WithFades(CommercialFade, 0))

	case models.SegmentFiller:
		return r.media.BlackClip(ctx, out, seg.Duration, r.spec)

	default:
		return fmt.Errorf("unknown segment kind %q", seg.Kind)
	}
}

// WriteManifest writes an ffmpeg concat list with one absolute path per line.
func WriteManifest(path string, files []string) error {
	var b strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}
