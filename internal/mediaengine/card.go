/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mediaengine

import (
	"context"
	"fmt"
	"strings"
)

// Card describes a generated teletext-style text card.
type Card struct {
	Header     string // station name drawn in the top band
	TextFile   string // body text, one row per line
	Background string // ffmpeg color name or 0xRRGGBB
	Foreground string
	FontFile   string // empty uses the fontconfig default
	FontSize   int
	MusicPath  string // looped under the card, silence when empty
	Duration   float64
	Spec       ClipSpec
}

// CardFilter draws the header band and centered body text over a solid background.
func CardFilter(card Card) string {
	size := card.FontSize
	if size <= 0 {
		size = card.Spec.Height / 16
	}
	font := ""
	if card.FontFile != "" {
		font = ":fontfile=" + quoteFilterValue(card.FontFile)
	}

	parts := []string{
		fmt.Sprintf("drawbox=x=0:y=0:w=iw:h=ih/8:color=%s:t=fill", card.Foreground),
		fmt.Sprintf("drawtext=expansion=none%s:text=%s:fontcolor=%s:fontsize=%d:x=(w-text_w)/2:y=(h/8-text_h)/2",
			font, quoteFilterValue(card.Header), card.Background, size),
		fmt.Sprintf("drawtext=expansion=none%s:textfile=%s:fontcolor=%s:fontsize=%d:line_spacing=%d:x=(w-text_w)/2:y=(h-text_h)/2",
			font, quoteFilterValue(card.TextFile), card.Foreground, size, size/2),
	}
	if fade := FadeFilter(0.5, 0.5, card.Duration); fade != "" {
		parts = append(parts, fade)
	}
	parts = append(parts, "format=yuv420p")
	return strings.Join(parts, ",")
}

// TitleCard renders a card clip of card.Duration seconds.
func (e *Engine) TitleCard(ctx context.Context, out string, card Card) error {
	if card.Duration <= 0 {
		return &TransformError{Op: "card", Path: out, Err: fmt.Errorf("non-positive duration %v", card.Duration)}
	}
	if card.Background == "" {
		card.Background = "0x000080"
	}
	if card.Foreground == "" {
		card.Foreground = "yellow"
	}

	args := []string{
		"-y", "-loglevel", "error",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
			card.Background, card.Spec.Width, card.Spec.Height, card.Spec.FPS, secs(card.Duration)),
	}
	if card.MusicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", card.MusicPath)
	} else {
		args = append(args, "-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=48000")
	}
	args = append(args,
		"-map", "0:v", "-map", "1:a",
		"-vf", CardFilter(card),
		"-af", fmt.Sprintf("afade=t=in:st=0:d=0.5,afade=t=out:st=%s:d=0.5", secs(max(card.Duration-0.5, 0))),
		"-t", secs(card.Duration),
	)
	args = append(args, encodeArgs()...)
	args = append(args, out)

	_, err := e.transform(ctx, "card", out, e.opts.FFmpegBin, args...)
	return err
}

// quoteFilterValue single-quotes a filter option value.
func quoteFilterValue(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
