/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package bumper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/telestar/internal/mediaengine"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
)

func TestWrapLine(t *testing.T) {
	tests := []struct {
		prefix, title, want string
	}{
		{"Next", "Show", "Next - Show"},
		{"Now Playing", "The Long Title", "Now Playing\nThe Long Title"},
		{"Next", strings.Repeat("x", 17), "Next - " + strings.Repeat("x", 17)}, // 24 chars
		{"Next", strings.Repeat("x", 18), "Next\n" + strings.Repeat("x", 18)},  // 25 chars
	}
	for _, tt := range tests {
		if got := WrapLine(tt.prefix, tt.title); got != tt.want {
			t.Errorf("WrapLine(%q, %q) = %q, want %q", tt.prefix, tt.title, got, tt.want)
		}
	}
}

func dayEntries() []schedule.Entry {
	return []schedule.Entry{
		{StartTime: "18:00", Title: "A", Duration: 1800},
		{StartTime: "18:30", Title: "B", Duration: 1800},
		{StartTime: "19:00", Title: "C", Duration: 1800},
		{StartTime: "19:30", Title: models.OffAir},
	}
}

func TestComposer(t *testing.T) {
	c := Composer{ZoneLabel: "CET", SignOff: "Thank you for watching.\nGood night!"}
	entries := dayEntries()

	tests := []struct {
		name string
		got  string
		want []string
	}{
		{"mid first", c.Mid("A", entries), []string{"Now Playing - A", "18:30 CET - B", "19:00 CET - C"}},
		{"mid last", c.Mid("c", entries), []string{"Now Playing - c", "19:30 CET - OFF AIR", ""}},
		{"end first", c.End("A", entries), []string{"Next - B", "19:00 CET - C", "19:30 CET - OFF AIR"}},
		{"end second", c.End("B", entries), []string{"Next - C", "19:30 CET - OFF AIR", ""}},
		{"end last", c.End("C", entries), []string{"Thank you for watching.\nGood night!", "", ""}},
		{"end without sentinel", c.End("only", []schedule.Entry{{StartTime: "18:00", Title: "only"}}), []string{"Thank you for watching.\nGood night!", "", ""}},
		{"mid short schedule", c.Mid("only", []schedule.Entry{{StartTime: "18:00", Title: "only"}}), []string{"Now Playing - only", models.OffAir, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if want := strings.Join(tt.want, "\n"); tt.got != want {
				t.Fatalf("got %q, want %q", tt.got, want)
			}
		})
	}
}

type fakeMaker struct {
	cards   []mediaengine.Card
	outs    []string
	texts   []string
	analogs [][2]string
}

func (f *fakeMaker) TitleCard(ctx context.Context, out string, card mediaengine.Card) error {
	data, err := os.ReadFile(card.TextFile)
	if err != nil {
		return err
	}
	f.texts = append(f.texts, string(data))
	f.cards = append(f.cards, card)
	f.outs = append(f.outs, out)
	return nil
}

func (f *fakeMaker) ApplyAnalogFilter(ctx context.Context, in, out, preset string) error {
	f.analogs = append(f.analogs, [2]string{in, out})
	return nil
}

func TestCardRenderer(t *testing.T) {
	dir := t.TempDir()
	maker := &fakeMaker{}
	r := NewCardRenderer(maker, Options{
		Station:   "Telestar",
		Duration:  5,
		Spec:      mediaengine.DefaultClipSpec(),
		MusicPath: filepath.Join(dir, "missing.mp3"),
	}, zerolog.Nop())

	out := filepath.Join(dir, "mid.mp4")
	got, err := r.Render(context.Background(), "Now Playing - A", out)
	if err != nil {
		t.Fatal(err)
	}
	if got != out || maker.outs[0] != out {
		t.Fatalf("rendered to %q / %q, want %q", got, maker.outs[0], out)
	}
	if maker.texts[0] != "Now Playing - A" {
		t.Fatalf("card text = %q", maker.texts[0])
	}
	if maker.cards[0].MusicPath != "" {
		t.Fatal("missing music file should be dropped")
	}
	if maker.cards[0].Header != "Telestar" || maker.cards[0].Duration != 5 {
		t.Fatalf("card = %+v", maker.cards[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "mid.txt")); !os.IsNotExist(err) {
		t.Fatal("card text file left behind")
	}
	if len(maker.analogs) != 0 {
		t.Fatal("analog filter ran without a preset")
	}
}

func TestCardRendererAnalogPass(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "vhs.json")
	if err := os.WriteFile(preset, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	maker := &fakeMaker{}
	r := NewCardRenderer(maker, Options{Duration: 5, Spec: mediaengine.DefaultClipSpec(), AnalogPreset: preset}, zerolog.Nop())

	out := filepath.Join(dir, "end.mp4")
	if _, err := r.Render(context.Background(), "Next - B", out); err != nil {
		t.Fatal(err)
	}
	clean := filepath.Join(dir, "end_clean.mp4")
	if maker.outs[0] != clean {
		t.Fatalf("card rendered to %q, want %q", maker.outs[0], clean)
	}
	if len(maker.analogs) != 1 || maker.analogs[0] != [2]string{clean, out} {
		t.Fatalf("analog calls = %v", maker.analogs)
	}
}
