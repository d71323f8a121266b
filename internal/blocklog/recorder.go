/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package blocklog persists approved blocks and their assembly outcomes.
package blocklog

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsincode/telestar/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Recorder writes block history through gorm.
type Recorder struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewRecorder creates a recorder over a migrated database.
func NewRecorder(db *gorm.DB, logger zerolog.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.With().Str("component", "blocklog").Logger(),
	}
}

// Record stores block with its entries, runs and segments in one transaction.
// Missing IDs are assigned and positions follow slice order.
func (r *Recorder) Record(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	for i := range block.Entries {
		e := &block.Entries[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.BlockID = block.ID
		e.Position = i
	}
	for i := range block.Runs {
		run := &block.Runs[i]
		if run.ID == "" {
			run.ID = uuid.New().String()
		}
		run.BlockID = block.ID
		for j := range run.Segments {
			seg := &run.Segments[j]
			if seg.ID == "" {
				seg.ID = uuid.New().String()
			}
			seg.ProgramRunID = run.ID
			seg.Position = j
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(block).Error; err != nil {
			return fmt.Errorf("create block: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info().
		Str("block_id", block.ID).
		Str("start", block.StartTime).
		Int("programs", len(block.Runs)).
		Bool("dry_run", block.DryRun).
		Msg("block recorded")
	return nil
}

// List returns the most recent blocks with their runs, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]models.Block, error) {
	if limit <= 0 {
		limit = 20
	}
	var blocks []models.Block
	err := r.db.WithContext(ctx).
		Preload("Runs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Get loads one block with entries, runs and segments.
func (r *Recorder) Get(ctx context.Context, id string) (*models.Block, error) {
	var block models.Block
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Runs").
		Preload("Runs.Segments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&block, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", id, err)
	}
	return &block, nil
}

// LastAired returns the most recent successful run of title, or nil if it never aired.
func (r *Recorder) LastAired(ctx context.Context, title string) (*models.ProgramRun, error) {
	var runs []models.ProgramRun
	err := r.db.WithContext(ctx).
		Where("title = ? AND status = ?", title, models.RunStatusOK).
		Order("created_at DESC").
		Limit(1).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("last aired %q: %w", title, err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Prune deletes blocks created before cutoff and returns how many were removed.
func (r *Recorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Block{}).Where("created_at < ?", cutoff).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := deleteBlocks(tx, ids); err != nil {
			return err
		}
		removed = int64(len(ids))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune blocks: %w", err)
	}
	return removed, nil
}

// Reset removes all recorded history.
func (r *Recorder) Reset(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.SegmentRecord{}, &models.ProgramRun{}, &models.BlockEntry{}, &models.Block{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Info().Msg("block history reset")
	return nil
}

func deleteBlocks(tx *gorm.DB, ids []string) error {
	runIDs := tx.Model(&models.ProgramRun{}).Select("id").Where("block_id IN ?", ids)
	if err := tx.Where("program_run_id IN (?)", runIDs).Delete(&models.SegmentRecord{}).Error; err != nil {
		return err
	}
	if err := tx.Where("block_id IN ?", ids).Delete(&models.ProgramRun{}).Error; err != nil {
		return err
	}
	if err := tx.Where("block_id IN ?", ids).Delete(&models.BlockEntry{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Block{}).Error
}
