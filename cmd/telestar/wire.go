/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/telestar/internal/assembler"
	"github.com/friendsincode/telestar/internal/blocklog"
	"github.com/friendsincode/telestar/internal/breaks"
	"github.com/friendsincode/telestar/internal/bumper"
	"github.com/friendsincode/telestar/internal/db"
	"github.com/friendsincode/telestar/internal/library"
	"github.com/friendsincode/telestar/internal/mediaengine"
	"github.com/friendsincode/telestar/internal/schedule"
)

// pipeline holds the components shared by the subcommands.
type pipeline struct {
	engine   *mediaengine.Engine
	detector *breaks.Detector
	scanner  *library.Scanner
	resolver *library.Resolver
	renderer *assembler.Renderer
	exporter *schedule.ExportService
	composer bumper.Composer
}

func newPipeline() *pipeline {
	engine := mediaengine.New(mediaengine.Options{
		FFmpegBin:  cfg.FFmpegBin,
		FFprobeBin: cfg.FFprobeBin,
		NTSCBin:    cfg.NTSCBin,
	}, logger)

	spec := mediaengine.ClipSpec{
		Width:      cfg.Width,
		Height:     cfg.Height,
		FPS:        cfg.FPS,
		TargetLUFS: cfg.TargetLUFS,
	}

	detectOpts := breaks.DefaultOptions()
	detectOpts.MinGap = cfg.MinGap
	detectOpts.MaxBreaks = cfg.MaxBreaks
	detectOpts.SampleInterval = cfg.SampleInterval
	detectOpts.DarkThreshold = cfg.DarkThreshold

	cards := bumper.NewCardRenderer(engine, bumper.Options{
		Station:      cfg.Station,
		Duration:     cfg.BumperDuration,
		Spec:         spec,
		FontFile:     cfg.FontFile,
		MusicPath:    cfg.BumperMusic,
		AnalogPreset: cfg.AnalogPreset,
	}, logger)

	return &pipeline{
		engine:   engine,
		detector: breaks.NewDetector(engine, detectOpts, logger),
		scanner:  library.NewScanner(cfg.VerifyContent, logger),
		resolver: library.NewResolver(library.HeaderProber{Next: engine}, cfg.SlotSize, logger),
		renderer: assembler.NewRenderer(engine, cards, spec, cfg.TempDir, logger),
		exporter: schedule.NewExportService(cfg.OutputDir, cfg.Station, logger),
		composer: bumper.Composer{ZoneLabel: cfg.ZoneLabel, SignOff: cfg.SignOff},
	}
}

// openHistory connects and migrates the history database.
func openHistory() (*gorm.DB, *blocklog.Recorder, error) {
	database, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		_ = db.Close(database)
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, blocklog.NewRecorder(database, logger), nil
}
