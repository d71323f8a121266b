/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/telestar/internal/config"
	"github.com/friendsincode/telestar/internal/logging"
	"github.com/friendsincode/telestar/internal/telemetry"
	"github.com/friendsincode/telestar/internal/version"
)

var (
	logger     zerolog.Logger
	cfg        *config.Config
	configPath string
	logFile    *os.File
)

var rootCmd = &cobra.Command{
	Use:           "telestar",
	Short:         "Telestar - broadcast block builder",
	Long:          "Telestar assembles a scheduled block of programs with commercial breaks, bumpers and filler into one continuous file.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $TELESTAR_CONFIG)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.LogFile != "" {
		logFile, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logger = logging.SetupWithWriter(cfg.Environment, cfg.LogLevel, os.Stderr, logFile)
		return nil
	}
	logger = logging.Setup(cfg.Environment, cfg.LogLevel)
	return nil
}

func closeLog() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// startTelemetry initializes tracing and returns a func that flushes spans and
// writes the metrics textfile.
func startTelemetry(ctx context.Context) (func(), error) {
	tp, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "telestar",
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize tracer: %w", err)
	}

	return func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
		if err := telemetry.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error().Err(err).Str("path", cfg.MetricsTextfile).Msg("failed to write metrics")
		}
	}, nil
}
