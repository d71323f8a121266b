/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mediaengine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type recordedCall struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []recordedCall
	stdout map[string]string // keyed by binary
	fail   map[string]error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, recordedCall{name: name, args: args})
	if err := f.fail[name]; err != nil {
		return nil, []byte("boom: invalid data found when processing input"), err
	}
	return []byte(f.stdout[name]), nil, nil
}

func newTestEngine(f *fakeRunner) *Engine {
	e := New(Options{}, zerolog.Nop())
	e.run = f.run
	return e
}

func TestProbeDuration(t *testing.T) {
	f := &fakeRunner{stdout: map[string]string{"ffprobe": `{"format":{"duration":"1432.480000"}}`}}
	e := newTestEngine(f)

	got, err := e.ProbeDuration(context.Background(), "/programs/show.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if got != 1432.48 {
		t.Fatalf("duration = %v, want 1432.48", got)
	}
}

func TestProbeDurationFailures(t *testing.T) {
	cases := map[string]*fakeRunner{
		"tool error":  {fail: map[string]error{"ffprobe": errors.New("exit status 1")}},
		"no duration": {stdout: map[string]string{"ffprobe": `{"format":{}}`}},
		"bad json":    {stdout: map[string]string{"ffprobe": `not json`}},
		"n/a":         {stdout: map[string]string{"ffprobe": `{"format":{"duration":"N/A"}}`}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestEngine(f).ProbeDuration(context.Background(), "x.mp4")
			if !errors.Is(err, ErrProbeFailed) {
				t.Fatalf("error = %v, want ErrProbeFailed", err)
			}
		})
	}
}

func TestParseDarkFrames(t *testing.T) {
	output := `frame:0    pts:0       pts_time:0
lavfi.signalstats.YAVG=4.2
frame:1    pts:1       pts_time:1
lavfi.signalstats.YAVG=120.5
frame:2    pts:2       pts_time:2
lavfi.signalstats.YAVG=14.9
frame:3    pts:3       pts_time:3
lavfi.signalstats.YAVG=15
`
	got := parseDarkFrames(output, 15)
	want := []float64{0, 2}
	if len(got) != len(want) {
		t.Fatalf("dark frames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dark frames = %v, want %v", got, want)
		}
	}
}

func TestSampleDarkFramesUnavailable(t *testing.T) {
	f := &fakeRunner{fail: map[string]error{"ffmpeg": errors.New("executable file not found")}}
	_, err := newTestEngine(f).SampleDarkFrames(context.Background(), "x.mp4", 1, 15)
	if !errors.Is(err, ErrSamplerUnavailable) {
		t.Fatalf("error = %v, want ErrSamplerUnavailable", err)
	}
}

func TestConformBuildsSinglePass(t *testing.T) {
	f := &fakeRunner{stdout: map[string]string{"ffprobe": `{"format":{"duration":"30.0"}}`}}
	e := newTestEngine(f)

	spec := DefaultClipSpec().WithFades(1, 1)
	if err := e.Conform(context.Background(), "in.mp4", "out.mp4", spec); err != nil {
		t.Fatalf("conform: %v", err)
	}

	last := f.calls[len(f.calls)-1]
	if last.name != "ffmpeg" {
		t.Fatalf("last call = %s, want ffmpeg", last.name)
	}
	joined := strings.Join(last.args, " ")
	for _, want := range []string{
		"scale=640:480",
		"fade=t=in:st=0:d=1",
		"fade=t=out:st=29:d=1",
		"loudnorm=I=-16:TP=-1.5:LRA=11",
		"out.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("ffmpeg args %q missing %q", joined, want)
		}
	}
}

func TestTransformErrorCarriesStderr(t *testing.T) {
	f := &fakeRunner{fail: map[string]error{"ffmpeg": errors.New("exit status 1")}}
	err := newTestEngine(f).Trim(context.Background(), "in.mp4", "out.mp4", 0, 10)

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TransformError", err)
	}
	if te.Op != "trim" || !strings.Contains(te.Stderr, "invalid data") {
		t.Fatalf("unexpected transform error: %+v", te)
	}
}

func TestFadeFilter(t *testing.T) {
	if got := FadeFilter(0, 0, 10); got != "" {
		t.Fatalf("no fades = %q, want empty", got)
	}
	if got := FadeFilter(0.5, 0.5, 60); got != "fade=t=in:st=0:d=0.5,fade=t=out:st=59.5:d=0.5" {
		t.Fatalf("fades = %q", got)
	}
	if got := FadeFilter(0, 2, 1); got != "fade=t=out:st=0:d=2" {
		t.Fatalf("clamped fade = %q", got)
	}
}
