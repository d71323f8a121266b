/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package mediaengine wraps the external media tools (ffmpeg, ffprobe, ntsc-rs)
// behind the transform, probe and frame sampling operations the block builder needs.
package mediaengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// ErrProbeFailed indicates a duration lookup failed. Callers fall back to defaults.
	ErrProbeFailed = errors.New("probe failed")

	// ErrSamplerUnavailable indicates frame sampling could not run.
	ErrSamplerUnavailable = errors.New("frame sampler unavailable")
)

// TransformError is returned when an external media tool exits non-zero.
// It is fatal for the program being processed.
type TransformError struct {
	Op     string
	Path   string
	Err    error
	Stderr string
}

func (e *TransformError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *TransformError) Unwrap() error { return e.Err }

// Transformer is the media transform surface used by the assembler and bumper renderer.
type Transformer interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Trim(ctx context.Context, in, out string, start, length float64) error
	Conform(ctx context.Context, in, out string, spec ClipSpec) error
	BlackClip(ctx context.Context, out string, duration float64, spec ClipSpec) error
	Concat(ctx context.Context, manifestPath, out string) error
	ApplyAnalogFilter(ctx context.Context, in, out, preset string) error
}

// Sampler finds unusually dark frames in a video.
type Sampler interface {
	SampleDarkFrames(ctx context.Context, path string, interval, threshold float64) ([]float64, error)
}

// Options selects the external binaries.
type Options struct {
	FFmpegBin  string
	FFprobeBin string
	NTSCBin    string
}

// runFunc executes a command and returns its stdout and stderr.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Engine implements Transformer and Sampler with ffmpeg, ffprobe and ntsc-rs.
type Engine struct {
	opts   Options
	logger zerolog.Logger
	run    runFunc
}

// New creates an engine. Empty binary names default to the tools on PATH.
func New(opts Options, logger zerolog.Logger) *Engine {
	if opts.FFmpegBin == "" {
		opts.FFmpegBin = "ffmpeg"
	}
	if opts.FFprobeBin == "" {
		opts.FFprobeBin = "ffprobe"
	}
	if opts.NTSCBin == "" {
		opts.NTSCBin = "ntsc-rs-cli"
	}
	return &Engine{
		opts:   opts,
		logger: logger.With().Str("component", "mediaengine").Logger(),
		run:    execRun,
	}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// transform runs a tool and converts failures into a TransformError.
func (e *Engine) transform(ctx context.Context, op, path, bin string, args ...string) ([]byte, error) {
	e.logger.Debug().Str("op", op).Str("path", path).Str("cmd", bin+" "+strings.Join(args, " ")).Msg("running media tool")

	stdout, stderr, err := e.run(ctx, bin, args...)
	if err != nil {
		return nil, &TransformError{Op: op, Path: path, Err: err, Stderr: tail(string(stderr), 400)}
	}
	return stdout, nil
}

// tail keeps the last n bytes of tool output, which is where ffmpeg reports the failure.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
