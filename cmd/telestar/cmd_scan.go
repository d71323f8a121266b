/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/library"
)

var (
	scanOutput  string
	scanWorkers int
	scanNoHash  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory the programs and commercials folders as JSON",
	Long: `scan lists every program and commercial with its size, SHA-256 hash,
probed duration and the slot it would occupy.

Examples:
  telestar scan -o library.json
  telestar scan --no-hash --workers 8   # output to stdout`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output file (default: stdout)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 4, "Parallel probe workers")
	scanCmd.Flags().BoolVar(&scanNoHash, "no-hash", false, "Skip content hashing")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	ctx := cmd.Context()
	p := newPipeline()

	programs, err := p.scanner.Scan(cfg.ProgramsDir, library.ProgramExtensions)
	if err != nil {
		return err
	}
	commercials, err := p.scanner.Scan(cfg.CommercialsDir, library.CommercialExtensions)
	if err != nil {
		logger.Warn().Err(err).Msg("commercials folder not scanned")
	}

	manifest, err := library.BuildManifest(ctx, library.HeaderProber{Next: p.engine}, programs, commercials, library.ManifestOptions{
		Workers:  scanWorkers,
		SlotSize: cfg.SlotSize,
		NoHash:   scanNoHash,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Info().
		Int("files", manifest.Stats.TotalFiles).
		Int("errors", manifest.Stats.Errors).
		Float64("seconds", manifest.Stats.DurationSeconds).
		Msg("scan complete")

	out := cmd.OutOrStdout()
	if scanOutput != "" {
		f, err := os.Create(scanOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}
