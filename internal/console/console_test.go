/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package console

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/editor"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
)

func scripted(lines ...string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	return New(in, &out, 80), &out
}

func TestBlockHour(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"valid", "7\n", 7},
		{"midnight", "0\n", 0},
		{"out of range", "24\n", DefaultHour},
		{"garbage", "evening\n", DefaultHour},
		{"eof", "", DefaultHour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(strings.NewReader(tt.input), &bytes.Buffer{}, 0)
			if got := p.BlockHour(); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBlockHourConfiguredFallback(t *testing.T) {
	p := New(strings.NewReader("later\n"), &bytes.Buffer{}, 0)
	p.FallbackHour = 20
	if got := p.BlockHour(); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

func threePrograms() []models.Program {
	return []models.Program{
		{Order: 1, Title: "A", SlotDuration: 1800},
		{Order: 2, Title: "B", SlotDuration: 1800},
		{Order: 3, Title: "C", SlotDuration: 3600},
	}
}

func TestSelectPrograms(t *testing.T) {
	p, out := scripted("3, 1")
	got := p.SelectPrograms(threePrograms())
	if len(got) != 2 || got[0].Title != "C" || got[0].Order != 1 || got[1].Title != "A" || got[1].Order != 2 {
		t.Fatalf("selected = %+v", got)
	}
	if !strings.Contains(out.String(), " 3. C (60 min)") {
		t.Fatalf("listing missing durations:\n%s", out.String())
	}

	p, _ = scripted("9")
	if got := p.SelectPrograms(threePrograms()); len(got) != 3 {
		t.Fatalf("invalid selection should keep all, got %d", len(got))
	}
}

func TestReviewSchedule(t *testing.T) {
	b := schedule.NewBuilder(clock.BlockStart(18), threePrograms())
	p, _ := scripted(
		"e", "2", "Bee",
		"d", "1",
		"p", "2", "Live", "9", "2", "News", "1",
		"r", "4, 1, 2, 3",
		"y",
	)
	if err := p.ReviewSchedule(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, e := range b.Entries() {
		got = append(got, e.StartTime+" "+e.Title)
	}
	want := []string{"18:00 News", "18:30 Bee", "19:00 C", "20:00 Live"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}

func TestReviewBreaks(t *testing.T) {
	prog := models.Program{Title: "Show", Path: "/media/show.mp4", ActualDuration: 1500, SlotDuration: 1800}
	ed := editor.New(prog, []float64{300, 700}, 5, nil)

	p, out := scripted(
		"1",          // drop 05:00
		"a", "20:00", // add 1200
		"a", "99:99", // rejected
		"y",
		"a", "2",
		"y",
	)
	res, err := p.ReviewBreaks(context.Background(), ed)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{700, 1200, 1500}; !reflect.DeepEqual(res.Breaks, want) {
		t.Fatalf("breaks = %v, want %v", res.Breaks, want)
	}
	if res.Placement.MidIndex() != 1 {
		t.Fatalf("mid = %d, want 1", res.Placement.MidIndex())
	}
	if !strings.Contains(out.String(), "Invalid input") {
		t.Fatalf("bad timestamp not reported:\n%s", out.String())
	}
}

func TestReviewBreaksBackKeepsMid(t *testing.T) {
	prog := models.Program{Title: "Show", Path: "/media/show.mp4", ActualDuration: 1500, SlotDuration: 1800}
	ed := editor.New(prog, []float64{300, 700, 1100}, 5, nil)

	p, _ := scripted("y", "a", "1", "b", "y", "y")
	res, err := p.ReviewBreaks(context.Background(), ed)
	if err != nil {
		t.Fatal(err)
	}
	if res.Placement.MidIndex() != 0 {
		t.Fatalf("mid = %d, want 0", res.Placement.MidIndex())
	}
}

func TestReviewBreaksEOFApproves(t *testing.T) {
	prog := models.Program{Title: "Show", Path: "/media/show.mp4", ActualDuration: 1500, SlotDuration: 1800}
	ed := editor.New(prog, []float64{700}, 5, nil)

	p := New(strings.NewReader(""), &bytes.Buffer{}, 0)
	res, err := p.ReviewBreaks(context.Background(), ed)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Breaks) != 2 || res.Placement.MidIndex() != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestParseIndexList(t *testing.T) {
	got, err := parseIndexList(" 2, 1 ,3", 3)
	if err != nil || !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Fatalf("got %v, %v", got, err)
	}
	for _, bad := range []string{"", "0", "4", "1,x"} {
		if _, err := parseIndexList(bad, 3); err == nil {
			t.Errorf("parseIndexList(%q) should fail", bad)
		}
	}
}

func TestReviewBreaksMidVerbs(t *testing.T) {
	prog := models.Program{Title: "Show", Path: "/media/show.mp4", ActualDuration: 1500, SlotDuration: 1800}
	tests := []struct {
		name  string
		input []string
		want  int
	}{
		{"approve auto", []string{"y", "y"}, 1},
		{"adjust to first block", []string{"y", "a", "1", "y"}, 0},
		{"adjust then default", []string{"y", "a", "3", "d", "y"}, 1},
		{"adjust rejects text", []string{"y", "a", "x", "y"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := editor.New(prog, []float64{300, 700, 1200, 1500}, 5, nil)
			p, _ := scripted(tt.input...)
			res, err := p.ReviewBreaks(context.Background(), ed)
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Placement.MidIndex(); got != tt.want {
				t.Fatalf("mid = %d, want %d", got, tt.want)
			}
		})
	}
}
