/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration. Values come from defaults, then an
// optional YAML file, then TELESTAR_* environment variables.
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"` // empty derives the level from Environment
	LogFile     string `yaml:"log_file"`  // JSON copy of the log, optional

	// Folders
	ProgramsDir    string `yaml:"programs_dir"`
	CommercialsDir string `yaml:"commercials_dir"`
	OutputDir      string `yaml:"output_dir"`
	TempDir        string `yaml:"temp_dir"` // empty uses the system temp dir
	VerifyContent  bool   `yaml:"verify_content"`

	// Scheduling
	SlotSize       int     `yaml:"slot_size"` // seconds
	DefaultHour    int     `yaml:"default_hour"`
	BumperDuration float64 `yaml:"bumper_duration"`
	Seed           int64   `yaml:"seed"` // 0 picks a fresh seed per run

	// Break detection
	MinGap         float64 `yaml:"min_gap"`
	MaxBreaks      int     `yaml:"max_breaks"`
	SampleInterval float64 `yaml:"sample_interval"`
	DarkThreshold  float64 `yaml:"dark_threshold"`

	// Output format
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FPS        int     `yaml:"fps"`
	TargetLUFS float64 `yaml:"target_lufs"`

	// External tools
	FFmpegBin  string `yaml:"ffmpeg_bin"`
	FFprobeBin string `yaml:"ffprobe_bin"`
	NTSCBin    string `yaml:"ntsc_bin"`

	// Bumpers
	Station      string `yaml:"station"`
	ZoneLabel    string `yaml:"zone_label"`
	SignOff      string `yaml:"sign_off"`
	BumperMusic  string `yaml:"bumper_music"`
	AnalogPreset string `yaml:"analog_preset"`
	FontFile     string `yaml:"font_file"`

	// Block history
	HistoryEnabled bool            `yaml:"history_enabled"`
	DBBackend      DatabaseBackend `yaml:"db_backend"`
	DBDSN          string          `yaml:"db_dsn"`

	// Observability
	MetricsTextfile   string  `yaml:"metrics_textfile"`
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	OTLPEndpoint      string  `yaml:"otlp_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Environment:       "development",
		ProgramsDir:       "./Programs",
		CommercialsDir:    "./Commercials",
		OutputDir:         "./tv_output",
		SlotSize:          1800,
		DefaultHour:       18,
		BumperDuration:    60,
		MinGap:            150,
		MaxBreaks:         4,
		SampleInterval:    1.0,
		DarkThreshold:     15,
		Width:             640,
		Height:            480,
		FPS:               25,
		TargetLUFS:        -16,
		FFmpegBin:         "ffmpeg",
		FFprobeBin:        "ffprobe",
		NTSCBin:           "ntsc-rs-cli",
		Station:           "Telestar",
		ZoneLabel:         "CET",
		SignOff:           "Thank you for watching Telestar.\nGood night!",
		HistoryEnabled:    true,
		DBBackend:         DatabaseSQLite,
		DBDSN:             "telestar.db",
		OTLPEndpoint:      "localhost:4317",
		TracingSampleRate: 1.0,
	}
}

// Load reads the optional YAML file at path (or TELESTAR_CONFIG), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("TELESTAR_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = getEnvAny([]string{"TELESTAR_ENV"}, cfg.Environment)
	cfg.LogLevel = getEnvAny([]string{"TELESTAR_LOG_LEVEL", "LOG_LEVEL"}, cfg.LogLevel)
	cfg.LogFile = getEnvAny([]string{"TELESTAR_LOG_FILE"}, cfg.LogFile)

	cfg.ProgramsDir = getEnvAny([]string{"TELESTAR_PROGRAMS_DIR"}, cfg.ProgramsDir)
	cfg.CommercialsDir = getEnvAny([]string{"TELESTAR_COMMERCIALS_DIR"}, cfg.CommercialsDir)
	cfg.OutputDir = getEnvAny([]string{"TELESTAR_OUTPUT_DIR"}, cfg.OutputDir)
	cfg.TempDir = getEnvAny([]string{"TELESTAR_TEMP_DIR", "TMPDIR"}, cfg.TempDir)
	cfg.VerifyContent = getEnvBoolAny([]string{"TELESTAR_VERIFY_CONTENT"}, cfg.VerifyContent)

	cfg.SlotSize = getEnvIntAny([]string{"TELESTAR_SLOT_SIZE"}, cfg.SlotSize)
	cfg.DefaultHour = getEnvIntAny([]string{"TELESTAR_DEFAULT_HOUR"}, cfg.DefaultHour)
	cfg.BumperDuration = getEnvFloatAny([]string{"TELESTAR_BUMPER_DURATION"}, cfg.BumperDuration)
	cfg.Seed = getEnvInt64Any([]string{"TELESTAR_SEED"}, cfg.Seed)

	cfg.MinGap = getEnvFloatAny([]string{"TELESTAR_MIN_GAP"}, cfg.MinGap)
	cfg.MaxBreaks = getEnvIntAny([]string{"TELESTAR_MAX_BREAKS"}, cfg.MaxBreaks)
	cfg.SampleInterval = getEnvFloatAny([]string{"TELESTAR_SAMPLE_INTERVAL"}, cfg.SampleInterval)
	cfg.DarkThreshold = getEnvFloatAny([]string{"TELESTAR_DARK_THRESHOLD"}, cfg.DarkThreshold)

	cfg.Width = getEnvIntAny([]string{"TELESTAR_WIDTH"}, cfg.Width)
	cfg.Height = getEnvIntAny([]string{"TELESTAR_HEIGHT"}, cfg.Height)
	cfg.FPS = getEnvIntAny([]string{"TELESTAR_FPS"}, cfg.FPS)
	cfg.TargetLUFS = getEnvFloatAny([]string{"TELESTAR_TARGET_LUFS"}, cfg.TargetLUFS)

	cfg.FFmpegBin = getEnvAny([]string{"TELESTAR_FFMPEG_BIN", "FFMPEG_BIN"}, cfg.FFmpegBin)
	cfg.FFprobeBin = getEnvAny([]string{"TELESTAR_FFPROBE_BIN", "FFPROBE_BIN"}, cfg.FFprobeBin)
	cfg.NTSCBin = getEnvAny([]string{"TELESTAR_NTSC_BIN"}, cfg.NTSCBin)

	cfg.Station = getEnvAny([]string{"TELESTAR_STATION"}, cfg.Station)
	cfg.ZoneLabel = getEnvAny([]string{"TELESTAR_ZONE_LABEL"}, cfg.ZoneLabel)
	cfg.SignOff = getEnvAny([]string{"TELESTAR_SIGN_OFF"}, cfg.SignOff)
	cfg.BumperMusic = getEnvAny([]string{"TELESTAR_BUMPER_MUSIC"}, cfg.BumperMusic)
	cfg.AnalogPreset = getEnvAny([]string{"TELESTAR_ANALOG_PRESET"}, cfg.AnalogPreset)
	cfg.FontFile = getEnvAny([]string{"TELESTAR_FONT_FILE"}, cfg.FontFile)

	cfg.HistoryEnabled = getEnvBoolAny([]string{"TELESTAR_HISTORY_ENABLED"}, cfg.HistoryEnabled)
	cfg.DBBackend = DatabaseBackend(getEnvAny([]string{"TELESTAR_DB_BACKEND"}, string(cfg.DBBackend)))
	cfg.DBDSN = getEnvAny([]string{"TELESTAR_DB_DSN", "DATABASE_URL"}, cfg.DBDSN)

	cfg.MetricsTextfile = getEnvAny([]string{"TELESTAR_METRICS_TEXTFILE"}, cfg.MetricsTextfile)
	cfg.TracingEnabled = getEnvBoolAny([]string{"TELESTAR_TRACING_ENABLED"}, cfg.TracingEnabled)
	cfg.OTLPEndpoint = getEnvAny([]string{"TELESTAR_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, cfg.OTLPEndpoint)
	cfg.TracingSampleRate = getEnvFloatAny([]string{"TELESTAR_TRACING_SAMPLE_RATE"}, cfg.TracingSampleRate)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.SlotSize <= 0 || c.SlotSize%60 != 0:
		return fmt.Errorf("slot size %d must be a positive multiple of 60 seconds", c.SlotSize)
	case c.DefaultHour < 0 || c.DefaultHour > 23:
		return fmt.Errorf("default hour %d not in 0-23", c.DefaultHour)
	case c.BumperDuration < 0:
		return fmt.Errorf("bumper duration must not be negative")
	case c.MaxBreaks < 0:
		return fmt.Errorf("max breaks must not be negative")
	case c.MinGap < 0:
		return fmt.Errorf("min gap must not be negative")
	case c.SampleInterval <= 0:
		return fmt.Errorf("sample interval must be positive")
	case c.Width <= 0 || c.Height <= 0 || c.FPS <= 0:
		return fmt.Errorf("output format %dx%d@%d is invalid", c.Width, c.Height, c.FPS)
	case c.TracingSampleRate < 0 || c.TracingSampleRate > 1:
		return fmt.Errorf("tracing sample rate %v not in 0-1", c.TracingSampleRate)
	}

	if c.DBBackend != DatabasePostgres && c.DBBackend != DatabaseMySQL && c.DBBackend != DatabaseSQLite {
		return fmt.Errorf("unsupported database backend %q", c.DBBackend)
	}
	if c.HistoryEnabled && c.DBDSN == "" {
		return fmt.Errorf("TELESTAR_DB_DSN must be provided when history is enabled")
	}
	return nil
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

func getEnvInt64Any(keys []string, def int64) int64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
