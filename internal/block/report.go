/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package block

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/friendsincode/telestar/internal/assembler"
	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/models"
)

// WritePlan prints the segment table for one plan. Consecutive filler chunks share a row.
func WritePlan(w io.Writer, plan assembler.Plan) error {
	p := plan.Program
	fmt.Fprintf(w, "\n%s  %s  (slot %s, program %s)\n", p.StartTime, p.Title,
		clock.FormatTimestamp(float64(p.SlotDuration)), clock.FormatTimestamp(p.ActualDuration))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tKIND\tBREAK\tAT\tLENGTH\tSOURCE")

	at := 0.0
	row := 0
	for i := 0; i < len(plan.Segments); i++ {
		seg := plan.Segments[i]
		length := seg.Duration
		source := filepath.Base(seg.Source)
		if seg.Source == "" {
			source = "-"
		}
		if seg.Kind == models.SegmentFiller {
			n := 1
			for i+1 < len(plan.Segments) && plan.Segments[i+1].Kind == models.SegmentFiller && plan.Segments[i+1].Break == seg.Break {
				i++
				n++
				length += plan.Segments[i].Duration
			}
			source = fmt.Sprintf("black x%d", n)
		}

		row++
		brk := "end"
		if seg.Break >= 0 {
			brk = fmt.Sprint(seg.Break + 1)
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%.1fs\t%s\n", row, seg.Kind, brk, clock.FormatTimestamp(at), length, source)
		at += length
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := plan.Totals()
	_, err := fmt.Fprintf(w, "  program %.1fs  commercials %.1fs  filler %.1fs  bumpers %.1fs  total %.1fs / %ds\n",
		t.Program, t.Commercial, t.Filler, t.Bumper, t.All(), p.SlotDuration)
	return err
}

// WriteSummary prints one line per program outcome and the final file.
func WriteSummary(w io.Writer, report *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nSTART\tTITLE\tSTATUS\tOUTPUT")
	for _, o := range report.Outcomes {
		out := o.Output
		if o.Err != nil {
			out = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Program.StartTime, o.Program.Title, o.Status, out)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.FinalPath != "" {
		fmt.Fprintf(w, "\nFinal continuous program: %s\n", report.FinalPath)
	}
	_, err := fmt.Fprintf(w, "Seed: %d\n", report.Seed)
	return err
}
