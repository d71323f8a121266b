/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWriteTextfile(t *testing.T) {
	ProgramsTotal.WithLabelValues("ok").Inc()
	SegmentSeconds.WithLabelValues("filler").Add(1.5)
	ObserveStage("plan", time.Now())

	path := filepath.Join(t.TempDir(), "collector", "telestar.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`telestar_programs_total{status="ok"}`,
		`telestar_segment_seconds_total{kind="filler"}`,
		`telestar_stage_duration_seconds_bucket{stage="plan"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %s", want)
		}
	}
}

func TestWriteTextfileDisabled(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
}

func TestDisabledTracer(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, span := StartSpan(context.Background(), "test")
	EndSpan(span, errors.New("boom"))
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		desc := samplerFor(tt.rate).Description()
		if !strings.HasPrefix(desc, "ParentBased{root:"+tt.want) {
			t.Errorf("samplerFor(%v) = %s, want root %s", tt.rate, desc, tt.want)
		}
	}
}

func TestProgramAttrs(t *testing.T) {
	attrs := ProgramAttrs("Show A", 2)
	if len(attrs) != 2 {
		t.Fatalf("got %d attrs", len(attrs))
	}
	if attrs[0].Key != AttrProgram || attrs[0].Value.AsString() != "Show A" {
		t.Errorf("program attr = %v", attrs[0])
	}
	if attrs[1].Key != AttrOrder || attrs[1].Value.AsInt64() != 2 {
		t.Errorf("order attr = %v", attrs[1])
	}
}
