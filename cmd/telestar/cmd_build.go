/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/block"
	"github.com/friendsincode/telestar/internal/console"
	"github.com/friendsincode/telestar/internal/db"
)

var (
	buildDryRun bool
	buildYes    bool
	buildSeed   int64
	buildHour   int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a broadcast block",
	Long: `Build a broadcast block from the programs and commercials folders.

The block start hour, program selection, running order and every program's
break points are reviewed interactively, then each program is rendered with
its commercials, bumpers and filler and all of them are merged into
FULL_SCHEDULE.mp4 in the output folder.

Examples:
  # Interactive build
  telestar build

  # Accept every default, starting at 20:00
  telestar build --yes --hour 20

  # Print the segment plans without rendering
  telestar build --dry-run --seed 42
`,
	RunE: runBuild,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Review and export the running order only",
	RunE:  runBuild,
}

func init() {
	for _, c := range []*cobra.Command{buildCmd, scheduleCmd} {
		c.Flags().BoolVarP(&buildYes, "yes", "y", false, "Accept defaults at every prompt")
		c.Flags().IntVar(&buildHour, "hour", -1, "Block start hour for --yes (default from config)")
		rootCmd.AddCommand(c)
	}
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Plan segments without rendering")
	buildCmd.Flags().Int64Var(&buildSeed, "seed", 0, "Seed for commercial shuffling (default from config, 0 = random)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	ctx := cmd.Context()

	flush, err := startTelemetry(ctx)
	if err != nil {
		return err
	}
	defer flush()

	p := newPipeline()

	programs, pool, err := block.Discover(ctx, p.scanner, p.resolver, cfg.ProgramsDir, cfg.CommercialsDir, logger)
	if err != nil {
		return err
	}

	deps := block.Deps{
		Detector: p.detector,
		Renderer: p.renderer,
		Concat:   p.engine,
		Exporter: p.exporter,
		Composer: p.composer,
	}

	if buildYes {
		hour := buildHour
		if hour < 0 {
			hour = cfg.DefaultHour
		}
		deps.Reviewer = block.AutoReviewer{Hour: hour}
	} else {
		prompter := console.New(os.Stdin, os.Stdout, 0)
		prompter.FallbackHour = cfg.DefaultHour
		deps.Reviewer = prompter
	}

	if cfg.HistoryEnabled {
		database, recorder, err := openHistory()
		if err != nil {
			logger.Warn().Err(err).Msg("block history unavailable")
		} else {
			defer func() {
				db.UpdateConnectionMetrics(database)
				_ = db.Close(database)
			}()
			deps.Recorder = recorder
		}
	}

	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = buildSeed
	}

	runner := block.NewRunner(deps, block.Options{
		OutputDir:      cfg.OutputDir,
		BumperDuration: cfg.BumperDuration,
		Seed:           seed,
		DryRun:         buildDryRun,
		ScheduleOnly:   cmd.Name() == "schedule",
		Out:            os.Stdout,
	}, logger)

	report, err := runner.Run(ctx, programs, pool)
	if report != nil && len(report.Outcomes) > 0 {
		if werr := block.WriteSummary(os.Stdout, report); werr != nil {
			logger.Warn().Err(werr).Msg("print summary")
		}
	}
	if err != nil {
		return err
	}

	if report.Export != nil {
		fmt.Fprintf(os.Stdout, "\nSchedule exported: %s\n", report.Export.TXTPath)
	}
	return nil
}
