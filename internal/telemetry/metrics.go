/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "telestar"

// Registry holds every telestar metric. The build is a batch job, so metrics are
// written to a node-exporter textfile instead of being scraped.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Block assembly metrics.
var (
	ProgramsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "programs_total",
		Help:      "Programs processed, by outcome (ok, failed, planned).",
	}, []string{"status"})

	BreaksPerProgram = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "breaks_per_program",
		Help:      "Approved break points per program, program end included.",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
	})

	SegmentSeconds = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "segment_seconds_total",
		Help:      "Planned seconds by segment kind.",
	}, []string{"kind"})

	StageDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall time spent per pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"stage"})

	MediaToolFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_tool_failures_total",
		Help:      "External media tool failures by operation.",
	}, []string{"op"})

	LastBlockTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_block_timestamp_seconds",
		Help:      "Unix time the last block finished.",
	})
)

// Database metrics, fed by the gorm callbacks.
var (
	DatabaseQueryDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "database_query_duration_seconds",
		Help:      "Database operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "database_errors_total",
		Help:      "Database operation errors.",
	}, []string{"operation", "kind"})

	DatabaseConnectionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "database_connections_active",
		Help:      "Open database connections.",
	})
)

// WriteTextfile writes the registry in text exposition format to path.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
