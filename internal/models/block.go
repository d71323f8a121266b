/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// RunStatus is the outcome of assembling one program.
type RunStatus string

const (
	RunStatusOK      RunStatus = "ok"
	RunStatusFailed  RunStatus = "failed"
	RunStatusSkipped RunStatus = "skipped"
	RunStatusPlanned RunStatus = "planned"
)

// Block is an approved broadcast block.
type Block struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	StartTime  string `gorm:"type:varchar(5)"`
	EndTime    string `gorm:"type:varchar(5)"`
	OutputPath string
	Seed       int64
	DryRun     bool
	Version    string       `gorm:"type:varchar(32)"`
	Entries    []BlockEntry `gorm:"foreignKey:BlockID"`
	Runs       []ProgramRun `gorm:"foreignKey:BlockID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BlockEntry is one line of the finalized day schedule.
type BlockEntry struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	BlockID   string `gorm:"type:uuid;index"`
	Position  int
	StartTime string `gorm:"type:varchar(5)"`
	Title     string
	Duration  int
}

// ProgramRun records the assembly of one program within a block.
type ProgramRun struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	BlockID            string `gorm:"type:uuid;index"`
	Title              string `gorm:"index"`
	Path               string
	ActualDuration     float64
	SlotDuration       int
	BreakCount         int
	CommercialPerBreak float64
	MidBumper          int
	CommercialsAired   int
	Status             RunStatus `gorm:"type:varchar(16)"`
	Error              string    `gorm:"type:text"`
	OutputPath         string
	Segments           []SegmentRecord `gorm:"foreignKey:ProgramRunID"`
	CreatedAt          time.Time
}

// SegmentRecord persists one planned segment.
type SegmentRecord struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	ProgramRunID string `gorm:"type:uuid;index"`
	Position     int
	Kind         SegmentKind `gorm:"type:varchar(16)"`
	Source       string
	Start        float64
	Duration     float64
	BreakIndex   int
}
