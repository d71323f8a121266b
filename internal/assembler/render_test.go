/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/telestar/internal/mediaengine"
	"github.com/friendsincode/telestar/internal/models"
)

type fakeMedia struct {
	ops      []string
	specs    []mediaengine.ClipSpec
	manifest string
	failOp   string
}

func (f *fakeMedia) record(op string) error {
	f.ops = append(f.ops, op)
	if op == f.failOp {
		return &mediaengine.TransformError{Op: op, Err: errors.New("exit status 1")}
	}
	return nil
}

func (f *fakeMedia) ProbeDuration(ctx context.Context, path string) (float64, error) {
	return 0, f.record("probe")
}

func (f *fakeMedia) Trim(ctx context.Context, in, out string, start, length float64) error {
	return f.record("trim")
}

func (f *fakeMedia) Conform(ctx context.Context, in, out string, spec mediaengine.ClipSpec) error {
	f.specs = append(f.specs, spec)
	return f.record("conform")
}

func (f *fakeMedia) BlackClip(ctx context.Context, out string, duration float64, spec mediaengine.ClipSpec) error {
	return f.record("black")
}

func (f *fakeMedia) Concat(ctx context.Context, manifestPath, out string) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	f.manifest = string(data)
	return f.record("concat")
}

func (f *fakeMedia) ApplyAnalogFilter(ctx context.Context, in, out, preset string) error {
	return f.record("analog")
}

type fakeBumpers struct {
	texts []string
}

func (f *fakeBumpers) Render(ctx context.Context, text, outputPath string) (string, error) {
	f.texts = append(f.texts, text)
	return outputPath, nil
}

func samplePlan() Plan {
	return Plan{
		Program: models.Program{Title: "Show", Path: "/media/show.mp4", ActualDuration: 100, SlotDuration: 120},
		Segments: []models.Segment{
			{Kind: models.SegmentProgramSlice, Source: "/media/show.mp4", Start: 0, Duration: 60},
			{Kind: models.SegmentMidBumper, Duration: 5},
			{Kind: models.SegmentCommercial, Source: "/ads/a.mp4", Duration: 6},
			{Kind: models.SegmentFiller, Duration: 2},
			{Kind: models.SegmentProgramSlice, Source: "/media/show.mp4", Start: 60, Duration: 40},
			{Kind: models.SegmentEndBumper, Duration: 5, Break: -1},
		},
	}
}

func TestRenderWritesManifestAndCleansUp(t *testing.T) {
	root := t.TempDir()
	media := &fakeMedia{}
	bumpers := &fakeBumpers{}
	r := NewRenderer(media, bumpers, mediaengine.DefaultClipSpec(), root, zerolog.Nop())

	err := r.Render(context.Background(), RenderRequest{
		Plan:          samplePlan(),
		MidBumperText: "Now Playing - Show",
		EndBumperText: "Next - Other",
		OutputPath:    filepath.Join(root, "out.mp4"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{"trim", "conform", "conform", "conform", "black", "trim", "conform", "conform", "concat"}
	if strings.Join(media.ops, ",") != strings.Join(want, ",") {
		t.Fatalf("ops = %v, want %v", media.ops, want)
	}

	lines := strings.Split(strings.TrimSpace(media.manifest), "\n")
	if len(lines) != 6 {
		t.Fatalf("manifest has %d lines, want 6:\n%s", len(lines), media.manifest)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "file '/") || !strings.HasSuffix(l, ".mp4'") {
			t.Fatalf("bad manifest line %q", l)
		}
	}

	if got := strings.Join(bumpers.texts, "|"); got != "Now Playing - Show|Next - Other" {
		t.Fatalf("bumper texts = %q", got)
	}

	// program slice, mid bumper, commercial
	if s := media.specs[0]; s.FadeIn != ProgramFade || s.FadeOut != ProgramFade {
		t.Fatalf("program fades = %v/%v", s.FadeIn, s.FadeOut)
	}
	if s := media.specs[1]; s.FadeIn != BumperFade || s.MaxDuration != 5 {
		t.Fatalf("bumper spec = %+v", s)
	}
	if s := media.specs[2]; s.FadeIn != CommercialFade || s.FadeOut != 0 {
		t.Fatalf("commercial fades = %v/%v", s.FadeIn, s.FadeOut)
	}

	assertOnlyOutput(t, root)
}

func TestRenderFailureCleansUp(t *testing.T) {
	root := t.TempDir()
	media := &fakeMedia{failOp: "black"}
	r := NewRenderer(media, &fakeBumpers{}, mediaengine.DefaultClipSpec(), root, zerolog.Nop())

	err := r.Render(context.Background(), RenderRequest{Plan: samplePlan(), OutputPath: filepath.Join(root, "out.mp4")})
	var te *mediaengine.TransformError
	if !errors.As(err, &te) || te.Op != "black" {
		t.Fatalf("got %v, want TransformError from black clip", err)
	}
	for _, op := range media.ops {
		if op == "concat" {
			t.Fatal("concat ran after a failed segment")
		}
	}
	assertOnlyOutput(t, root)
}

func assertOnlyOutput(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Fatalf("temp dir %s left behind", e.Name())
		}
	}
}

func TestWriteManifestQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := WriteManifest(path, []string{"/tmp/it's.mp4"}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if got, want := string(data), "file '/tmp/it'\\''s.mp4'\n"; got != want {
		t.Fatalf("manifest = %q, want %q", got, want)
	}
}
