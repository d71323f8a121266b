/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/assembler"
	"github.com/friendsincode/telestar/internal/block"
	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/console"
	"github.com/friendsincode/telestar/internal/editor"
	"github.com/friendsincode/telestar/internal/library"
	"github.com/friendsincode/telestar/internal/models"
)

var (
	breaksYes  bool
	breaksPlan bool
)

var breaksCmd = &cobra.Command{
	Use:   "breaks <video>",
	Short: "Detect and review the break points of one program",
	Long: `Detect break points in a single video, review them, and print the
resulting commercial budget. With --plan the segment plan is printed as well,
using the configured commercials folder.`,
	Args: cobra.ExactArgs(1),
	RunE: runBreaks,
}

func init() {
	breaksCmd.Flags().BoolVarP(&breaksYes, "yes", "y", false, "Accept the detected breaks")
	breaksCmd.Flags().BoolVar(&breaksPlan, "plan", false, "Also print the segment plan")
	rootCmd.AddCommand(breaksCmd)
}

func runBreaks(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open video: %w", err)
	}

	p := newPipeline()
	actual, slot := p.resolver.Resolve(ctx, path)
	program := models.Program{
		Order:          1,
		Title:          strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:           path,
		ActualDuration: actual,
		SlotDuration:   slot,
		StartTime:      fmt.Sprintf("%02d:00", cfg.DefaultHour),
	}

	ed := editor.New(program, p.detector.Detect(ctx, path, actual), cfg.BumperDuration, p.detector)

	var res editor.Result
	var err error
	if breaksYes {
		fmt.Fprintln(out, ed.Timeline(0))
		res, err = block.AutoReviewer{}.ReviewBreaks(ctx, ed)
	} else {
		res, err = console.New(os.Stdin, out, 0).ReviewBreaks(ctx, ed)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s: %s of %s slot\n", program.Title, clock.FormatTimestamp(actual), clock.FormatTimestamp(float64(slot)))
	for i, b := range res.Breaks {
		marker := ""
		if i == res.Placement.MidIndex() {
			marker = "  <- mid bumper"
		}
		fmt.Fprintf(out, "  %d. %s%s\n", i+1, clock.FormatTimestamp(b), marker)
	}
	fmt.Fprintf(out, "Commercial time per break: %.1fs\n", res.CommercialPerBreak)

	if !breaksPlan {
		return nil
	}

	var pool []models.Commercial
	if files, err := p.scanner.Scan(cfg.CommercialsDir, library.CommercialExtensions); err != nil {
		logger.Warn().Err(err).Msg("commercials unavailable")
	} else {
		pool = p.resolver.Commercials(ctx, files)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	plan, _ := assembler.Build(assembler.PlanRequest{
		Program:        program,
		Breaks:         res.Breaks,
		PerBreak:       res.CommercialPerBreak,
		Placement:      res.Placement,
		Pool:           pool,
		Used:           assembler.NewUsage(),
		Rng:            rand.New(rand.NewSource(seed)),
		BumperDuration: cfg.BumperDuration,
	})
	return block.WritePlan(out, plan)
}
