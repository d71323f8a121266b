/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"github.com/friendsincode/telestar/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Block{},
		&models.BlockEntry{},
		&models.ProgramRun{},
		&models.SegmentRecord{},
	); err != nil {
		return fmt.Errorf("auto-migrate block history: %w", err)
	}

	return applyPostgresRunStatusGuard(database)
}

func applyPostgresRunStatusGuard(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}

	stmt := `
ALTER TABLE program_runs DROP CONSTRAINT IF EXISTS chk_program_runs_status;
ALTER TABLE program_runs ADD CONSTRAINT chk_program_runs_status
  CHECK (status IN ('ok', 'failed', 'skipped', 'planned'));
`
	if err := database.Exec(stmt).Error; err != nil {
		return fmt.Errorf("apply postgres run status guard: %w", err)
	}
	return nil
}
