/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package block

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/friendsincode/telestar/internal/library"
	"github.com/rs/zerolog"
)

type constProber float64

func (c constProber) ProbeDuration(context.Context, string) (float64, error) {
	return float64(c), nil
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	programs := filepath.Join(root, "Programs")
	if err := os.Mkdir(programs, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.mkv", "a.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(programs, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	scanner := library.NewScanner(false, zerolog.Nop())
	resolver := library.NewResolver(constProber(1250), 1800, zerolog.Nop())

	got, pool, err := Discover(context.Background(), scanner, resolver, programs, filepath.Join(root, "Commercials"), zerolog.Nop())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "b" {
		t.Fatalf("programs = %+v", got)
	}
	if got[0].SlotDuration != 1800 || got[0].Order != 1 {
		t.Fatalf("program = %+v", got[0])
	}
	if len(pool) != 0 {
		t.Fatalf("missing commercials folder should give an empty pool, got %d", len(pool))
	}
}

func TestDiscoverEmptyProgramsFolder(t *testing.T) {
	scanner := library.NewScanner(false, zerolog.Nop())
	resolver := library.NewResolver(constProber(10), 1800, zerolog.Nop())
	if _, _, err := Discover(context.Background(), scanner, resolver, t.TempDir(), t.TempDir(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty programs folder")
	}
}
