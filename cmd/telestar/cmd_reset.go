/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/block"
	"github.com/friendsincode/telestar/internal/db"
)

var (
	resetForce        bool
	resetDeleteOutput bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the block history and optionally delete rendered output",
	Long: `Reset Telestar to a fresh state.

This command will:
- Delete every recorded block, program run and segment plan
- Optionally delete rendered programs, the merged block and schedule exports

WARNING: This action is irreversible!

Examples:
  # Interactive reset (will prompt for confirmation)
  telestar reset

  # Force reset and remove rendered files
  telestar reset --force --delete-output
`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	resetCmd.Flags().BoolVar(&resetDeleteOutput, "delete-output", false, "Also delete rendered files in the output folder")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if !resetForce {
		fmt.Println("This will DELETE the recorded block history.")
		if resetDeleteOutput {
			fmt.Printf("It will also delete rendered files in %s.\n", cfg.OutputDir)
		}
		fmt.Println("This action CANNOT be undone!")
		fmt.Print("Type 'yes' to confirm reset: ")
		response, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(response)) != "yes" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	logger.Info().Bool("delete_output", resetDeleteOutput).Msg("Starting history reset")

	database, recorder, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close(database)

	if err := recorder.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}

	if resetDeleteOutput {
		removed := deleteOutputs(cfg.OutputDir)
		logger.Info().Int("files", removed).Str("path", cfg.OutputDir).Msg("Output files deleted")
	}

	logger.Info().Msg("Reset complete")
	return nil
}

// deleteOutputs removes files written by build runs and returns how many were removed.
func deleteOutputs(dir string) int {
	patterns := []string{"temp_*.mp4", block.FinalName, block.ManifestName, "schedule_*.txt", "schedule_*.csv", "schedule_*.ics"}
	removed := 0
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("failed to delete file")
				continue
			}
			removed++
		}
	}
	return removed
}
