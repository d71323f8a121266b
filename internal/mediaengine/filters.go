/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mediaengine

import (
	"fmt"
	"strconv"
	"strings"
)

// ClipSpec describes the output format every segment is conformed to before concatenation.
type ClipSpec struct {
	Width       int
	Height      int
	FPS         int
	FadeIn      float64
	FadeOut     float64
	TargetLUFS  float64
	MaxDuration float64 // 0 keeps the full input
}

// DefaultClipSpec matches the block output format.
func DefaultClipSpec() ClipSpec {
	return ClipSpec{Width: 640, Height: 480, FPS: 25, TargetLUFS: -16}
}

// WithFades returns a copy of the spec with the given fades.
func (s ClipSpec) WithFades(in, out float64) ClipSpec {
	s.FadeIn = in
	s.FadeOut = out
	return s
}

// WithMaxDuration returns a copy of the spec limited to d seconds.
func (s ClipSpec) WithMaxDuration(d float64) ClipSpec {
	s.MaxDuration = d
	return s
}

// ScaleAndPadFilter letterboxes the input into width x height at fps.
func ScaleAndPadFilter(width, height, fps int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d,format=yuv420p",
		width, height, width, height, fps,
	)
}

// FadeFilter fades video in at the start and out before duration. Zero fades are omitted.
func FadeFilter(fadeIn, fadeOut, duration float64) string {
	var parts []string
	if fadeIn > 0 {
		parts = append(parts, "fade=t=in:st=0:d="+secs(fadeIn))
	}
	if fadeOut > 0 {
		start := duration - fadeOut
		if start < 0 {
			start = 0
		}
		parts = append(parts, fmt.Sprintf("fade=t=out:st=%s:d=%s", secs(start), secs(fadeOut)))
	}
	return strings.Join(parts, ",")
}

// LoudnormFilter normalizes integrated loudness to target LUFS.
func LoudnormFilter(targetLUFS float64) string {
	return fmt.Sprintf("loudnorm=I=%s:TP=-1.5:LRA=11", secs(targetLUFS))
}

// videoChain joins the conform filters for a clip of the given duration.
func videoChain(spec ClipSpec, duration float64) string {
	chain := ScaleAndPadFilter(spec.Width, spec.Height, spec.FPS)
	if fade := FadeFilter(spec.FadeIn, spec.FadeOut, duration); fade != "" {
		chain += "," + fade
	}
	return chain
}

// encodeArgs are the shared output settings so every segment concatenates cleanly.
func encodeArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "48000",
		"-ac", "2",
	}
}

func secs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
