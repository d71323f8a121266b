/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package editor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/friendsincode/telestar/internal/budget"
	"github.com/friendsincode/telestar/internal/clock"
)

// DefaultTimelineWidth is the column count of the terminal preview.
const DefaultTimelineWidth = 80

const (
	glyphProgram    = '#'
	glyphCommercial = '-'
	glyphMidBumper  = 'M'
	glyphEndBumper  = 'B'
)

// TimelineInput describes a slot for preview rendering.
type TimelineInput struct {
	ProgramDuration float64
	SlotDuration    float64
	Breaks          []float64 // sorted, final entry is the program end
	Mid             int       // index into Breaks, -1 for none
	BumperDuration  float64
	Width           int
}

type span struct {
	glyph    rune
	duration float64
	label    string
}

// RenderTimeline draws one character row of proportional segment widths followed by a legend.
// Rounding losses are handed to the segments with the largest fractional remainder so the row is exactly Width wide.
func RenderTimeline(in TimelineInput) string {
	width := in.Width
	if width <= 0 {
		width = DefaultTimelineWidth
	}

	alloc := budget.Allocate(in.ProgramDuration, in.SlotDuration, len(in.Breaks), in.BumperDuration)
	spans := buildSpans(in, alloc.PerBreak)

	var sum float64
	for _, s := range spans {
		sum += s.duration
	}
	total := math.Max(sum, in.SlotDuration)

	widths := distribute(spans, total, width)

	var row strings.Builder
	for i, s := range spans {
		row.WriteString(fill(s, widths[i]))
	}

	var b strings.Builder
	b.WriteString(row.String())
	b.WriteByte('\n')
	fmt.Fprintf(&b, "# program %s   - commercials %s   M/B bumpers %s\n",
		clock.FormatTimestamp(in.ProgramDuration),
		clock.FormatTimestamp(alloc.TotalCommercial),
		clock.FormatTimestamp(in.BumperDuration*bumperCount(in)))
	for i, t := range in.Breaks {
		marker := ""
		if i == in.Mid {
			marker = "  <- mid bumper"
		}
		fmt.Fprintf(&b, "  %d. %s%s\n", i+1, clock.FormatTimestamp(t), marker)
	}
	return b.String()
}

func bumperCount(in TimelineInput) float64 {
	n := 1.0
	if in.Mid >= 0 && in.Mid < len(in.Breaks) {
		n++
	}
	return n
}

func buildSpans(in TimelineInput, perBreak float64) []span {
	var spans []span
	last := 0.0
	for i, t := range in.Breaks {
		if t > last {
			spans = append(spans, span{glyph: glyphProgram, duration: t - last})
		}
		last = t
		if i == in.Mid {
			spans = append(spans, span{glyph: glyphMidBumper, duration: in.BumperDuration})
		}
		if perBreak > 0 {
			spans = append(spans, span{glyph: glyphCommercial, duration: perBreak, label: "C" + clock.FormatTimestamp(perBreak)})
		}
	}
	if in.ProgramDuration > last {
		spans = append(spans, span{glyph: glyphProgram, duration: in.ProgramDuration - last})
	}
	spans = append(spans, span{glyph: glyphEndBumper, duration: in.BumperDuration})
	return spans
}

// distribute implements largest-remainder apportionment of width columns.
func distribute(spans []span, total float64, width int) []int {
	widths := make([]int, len(spans))
	if total <= 0 || len(spans) == 0 {
		return widths
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(spans))
	used := 0
	for i, s := range spans {
		raw := s.duration / total * float64(width)
		widths[i] = int(math.Floor(raw))
		used += widths[i]
		rems[i] = rem{idx: i, frac: raw - math.Floor(raw)}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; used < width; i = (i + 1) % len(rems) {
		widths[rems[i].idx]++
		used++
	}
	return widths
}

func fill(s span, n int) string {
	if n <= 0 {
		return ""
	}
	if s.label != "" && len(s.label)+2 <= n {
		pad := n - len(s.label)
		left := pad / 2
		return strings.Repeat(string(s.glyph), left) + s.label + strings.Repeat(string(s.glyph), pad-left)
	}
	return strings.Repeat(string(s.glyph), n)
}
