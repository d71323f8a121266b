/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mediaengine

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// metadata=print emits "frame:12   pts:12   pts_time:12" followed by the requested keys.
	ptsTimeRegex = regexp.MustCompile(`pts_time:\s*([0-9.]+)`)
	yavgRegex    = regexp.MustCompile(`lavfi\.signalstats\.YAVG=([0-9.]+)`)
)

// SampleDarkFrames samples one frame every interval seconds and returns the
// timestamps whose mean luma falls below threshold (0-255 scale).
func (e *Engine) SampleDarkFrames(ctx context.Context, path string, interval, threshold float64) ([]float64, error) {
	if interval <= 0 {
		interval = 1.0
	}
	filter := fmt.Sprintf(
		"fps=1/%s,scale=out_range=full,format=gray,signalstats,metadata=print:key=lavfi.signalstats.YAVG:file=-",
		secs(interval),
	)

	stdout, stderr, err := e.run(ctx, e.opts.FFmpegBin,
		"-hide_banner", "-nostats",
		"-i", path,
		"-vf", filter,
		"-an", "-f", "null", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v %s", ErrSamplerUnavailable, path, err, tail(string(stderr), 200))
	}

	dark := parseDarkFrames(string(stdout), threshold)
	e.logger.Debug().Str("path", path).Int("dark_frames", len(dark)).Msg("frame sampling complete")
	return dark, nil
}

// parseDarkFrames pairs each pts_time line with the YAVG value that follows it.
func parseDarkFrames(output string, threshold float64) []float64 {
	var dark []float64
	current := -1.0

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if m := ptsTimeRegex.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				current = v
			}
			continue
		}
		if m := yavgRegex.FindStringSubmatch(line); m != nil && current >= 0 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v < threshold {
				dark = append(dark, current)
			}
			current = -1
		}
	}
	return dark
}
