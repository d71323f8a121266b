/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package block

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/telestar/internal/library"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/telemetry"
	"github.com/rs/zerolog"
)

// Discover scans the program and commercial folders and resolves their durations.
// A missing commercials folder yields an empty pool, so every break becomes filler.
func Discover(ctx context.Context, scanner *library.Scanner, resolver *library.Resolver, programsDir, commercialsDir string, logger zerolog.Logger) ([]models.Program, []models.Commercial, error) {
	start := time.Now()
	defer telemetry.ObserveStage("discover", start)

	files, err := scanner.Scan(programsDir, library.ProgramExtensions)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no video files found in %s", programsDir)
	}
	programs := resolver.Programs(ctx, files)

	var pool []models.Commercial
	ads, err := scanner.Scan(commercialsDir, library.CommercialExtensions)
	if err != nil {
		logger.Warn().Err(err).Msg("commercials unavailable, breaks will be filled with black")
	} else {
		pool = resolver.Commercials(ctx, ads)
	}

	logger.Info().
		Int("programs", len(programs)).
		Int("commercials", len(pool)).
		Msg("library discovered")
	return programs, pool, nil
}
