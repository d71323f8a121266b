/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/db"
	"github.com/friendsincode/telestar/internal/models"
)

var (
	historyLimit     int
	historyBlockID   string
	historyTitle     string
	historyPruneDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously built blocks",
	Long: `List recorded blocks, newest first.

Examples:
  # Last 10 blocks
  telestar history --limit 10

  # Full running order and segment plans of one block
  telestar history --block <id>

  # When did a program last air?
  telestar history --title "Show A"

  # Forget blocks older than 90 days
  telestar history --prune-days 90
`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of blocks to list")
	historyCmd.Flags().StringVar(&historyBlockID, "block", "", "Show one block in detail")
	historyCmd.Flags().StringVar(&historyTitle, "title", "", "Show when a program last aired")
	historyCmd.Flags().IntVar(&historyPruneDays, "prune-days", 0, "Delete blocks older than this many days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	database, recorder, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close(database)

	switch {
	case historyPruneDays > 0:
		removed, err := recorder.Prune(ctx, time.Now().AddDate(0, 0, -historyPruneDays))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d block(s).\n", removed)
		return nil

	case historyTitle != "":
		run, err := recorder.LastAired(ctx, historyTitle)
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Fprintf(out, "%q has not aired.\n", historyTitle)
			return nil
		}
		fmt.Fprintf(out, "%q last aired %s (block %s, %d breaks)\n",
			run.Title, run.CreatedAt.Format("2006-01-02 15:04"), run.BlockID, run.BreakCount)
		return nil

	case historyBlockID != "":
		block, err := recorder.Get(ctx, historyBlockID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Block %s  %s-%s  seed %d  built %s\n",
			block.ID, block.StartTime, block.EndTime, block.Seed, block.CreatedAt.Format("2006-01-02 15:04"))
		for _, e := range block.Entries {
			fmt.Fprintf(out, "  %s  %s\n", e.StartTime, e.Title)
		}
		for _, run := range block.Runs {
			fmt.Fprintf(out, "\n%s [%s] %s\n", run.Title, run.Status, run.Error)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, s := range run.Segments {
				fmt.Fprintf(tw, "  %d\t%s\t%s\t%.1fs\t%s\n", s.Position+1, s.Kind, clock.FormatTimestamp(s.Start), s.Duration, s.Source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	}

	blocks, err := recorder.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Fprintln(out, "No blocks recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBUILT\tBLOCK\tPROGRAMS\tOK\tFAILED\tDRY RUN")
	for _, b := range blocks {
		var ok, failed int
		for _, r := range b.Runs {
			switch r.Status {
			case models.RunStatusOK:
				ok++
			case models.RunStatusFailed:
				failed++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%d\t%d\t%d\t%t\n",
			b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.StartTime, b.EndTime, len(b.Runs), ok, failed, b.DryRun)
	}
	return tw.Flush()
}
