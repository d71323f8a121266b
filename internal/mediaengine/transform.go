/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mediaengine

import (
	"context"
	"fmt"
)

// Trim cuts length seconds starting at start into out.
func (e *Engine) Trim(ctx context.Context, in, out string, start, length float64) error {
	if length <= 0 {
		return &TransformError{Op: "trim", Path: in, Err: fmt.Errorf("non-positive length %v", length)}
	}
	args := []string{"-y", "-loglevel", "error", "-i", in, "-ss", secs(start), "-t", secs(length)}
	args = append(args, encodeArgs()...)
	args = append(args, out)
	_, err := e.transform(ctx, "trim", in, e.opts.FFmpegBin, args...)
	return err
}

// Conform scales, pads, fades and loudness-normalizes a clip in a single pass.
func (e *Engine) Conform(ctx context.Context, in, out string, spec ClipSpec) error {
	duration := spec.MaxDuration
	if duration <= 0 || spec.FadeOut > 0 {
		probed, err := e.ProbeDuration(ctx, in)
		if err != nil {
			return &TransformError{Op: "conform", Path: in, Err: err}
		}
		if duration <= 0 || probed < duration {
			duration = probed
		}
	}

	args := []string{"-y", "-loglevel", "error"}
	if spec.MaxDuration > 0 {
		args = append(args, "-t", secs(spec.MaxDuration))
	}
	args = append(args,
		"-i", in,
		"-vf", videoChain(spec, duration),
		"-af", LoudnormFilter(spec.TargetLUFS),
	)
	args = append(args, encodeArgs()...)
	args = append(args, "-metadata", "title=", out)

	_, err := e.transform(ctx, "conform", in, e.opts.FFmpegBin, args...)
	return err
}

// BlackClip writes a black clip with silent stereo audio.
func (e *Engine) BlackClip(ctx context.Context, out string, duration float64, spec ClipSpec) error {
	if duration <= 0 {
		return &TransformError{Op: "black", Path: out, Err: fmt.Errorf("non-positive duration %v", duration)}
	}
	args := []string{
		"-y", "-loglevel", "error",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s", spec.Width, spec.Height, spec.FPS, secs(duration)),
		"-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=48000",
		"-shortest",
	}
	args = append(args, encodeArgs()...)
	args = append(args, out)
	_, err := e.transform(ctx, "black", out, e.opts.FFmpegBin, args...)
	return err
}

// Concat joins the files listed in a concat demuxer manifest.
func (e *Engine) Concat(ctx context.Context, manifestPath, out string) error {
	args := []string{"-y", "-loglevel", "error", "-f", "concat", "-safe", "0", "-i", manifestPath}
	args = append(args, encodeArgs()...)
	args = append(args, out)
	_, err := e.transform(ctx, "concat", manifestPath, e.opts.FFmpegBin, args...)
	return err
}

// ApplyAnalogFilter runs ntsc-rs with a JSON preset.
func (e *Engine) ApplyAnalogFilter(ctx context.Context, in, out, preset string) error {
	_, err := e.transform(ctx, "analog", in, e.opts.NTSCBin, "-i", in, "-o", out, "-p", preset, "-y")
	return err
}
