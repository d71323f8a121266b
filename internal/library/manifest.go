/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/friendsincode/telestar/internal/clock"
)

// Manifest is the JSON inventory written by "telestar scan".
type Manifest struct {
	Version     int             `json:"version"`
	ScannedAt   time.Time       `json:"scanned_at"`
	SlotSize    int             `json:"slot_size"`
	Programs    []ManifestEntry `json:"programs"`
	Commercials []ManifestEntry `json:"commercials"`
	Stats       ManifestStats   `json:"stats"`
}

// ManifestEntry describes one scanned file.
type ManifestEntry struct {
	Path            string    `json:"path"`
	Title           string    `json:"title"`
	Size            int64     `json:"size"`
	ModifiedAt      time.Time `json:"modified_at"`
	ContentHash     string    `json:"content_hash,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	SlotSeconds     int       `json:"slot_seconds,omitempty"`
	ProbeError      string    `json:"probe_error,omitempty"`
}

// ManifestStats holds aggregate scan statistics.
type ManifestStats struct {
	TotalFiles      int     `json:"total_files"`
	TotalSize       int64   `json:"total_size"`
	Errors          int     `json:"errors"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ManifestOptions tunes BuildManifest.
type ManifestOptions struct {
	Workers  int
	SlotSize int
	NoHash   bool
}

type manifestJob struct {
	index   int
	file    File
	program bool
}

type manifestResult struct {
	index   int
	program bool
	entry   ManifestEntry
	err     error
}

// BuildManifest stats, hashes and probes every file with a pool of workers.
// Entries keep the order of the input slices.
func BuildManifest(ctx context.Context, prober Prober, programs, commercials []File, opts ManifestOptions) (*Manifest, error) {
	startTime := time.Now()
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.SlotSize <= 0 {
		opts.SlotSize = clock.DefaultSlotSize
	}

	m := &Manifest{
		Version:     1,
		ScannedAt:   startTime.UTC(),
		SlotSize:    opts.SlotSize,
		Programs:    make([]ManifestEntry, len(programs)),
		Commercials: make([]ManifestEntry, len(commercials)),
	}

	jobs := make(chan manifestJob, opts.Workers*2)
	results := make(chan manifestResult, opts.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				entry, err := processFile(ctx, prober, job, opts)
				results <- manifestResult{index: job.index, program: job.program, entry: entry, err: err}
			}
		}()
	}

	var collectDone sync.WaitGroup
	collectDone.Add(1)
	failed := map[bool][]int{}
	go func() {
		defer collectDone.Done()
		for r := range results {
			if r.err != nil {
				m.Stats.Errors++
				failed[r.program] = append(failed[r.program], r.index)
				continue
			}
			if r.entry.ProbeError != "" {
				m.Stats.Errors++
			}
			if r.program {
				m.Programs[r.index] = r.entry
			} else {
				m.Commercials[r.index] = r.entry
			}
			m.Stats.TotalFiles++
			m.Stats.TotalSize += r.entry.Size
		}
	}()

	var canceled error
enqueue:
	for _, group := range []struct {
		files   []File
		program bool
	}{{programs, true}, {commercials, false}} {
		for i, f := range group.files {
			if err := ctx.Err(); err != nil {
				canceled = err
				break enqueue
			}
			select {
			case <-ctx.Done():
				canceled = ctx.Err()
				break enqueue
			case jobs <- manifestJob{index: i, file: f, program: group.program}:
			}
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	collectDone.Wait()

	if canceled != nil {
		return nil, canceled
	}

	m.Programs = dropIndices(m.Programs, failed[true])
	m.Commercials = dropIndices(m.Commercials, failed[false])
	m.Stats.DurationSeconds = time.Since(startTime).Seconds()
	return m, nil
}

func processFile(ctx context.Context, prober Prober, job manifestJob, opts ManifestOptions) (ManifestEntry, error) {
	info, err := os.Stat(job.file.Path)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("%s: stat: %w", job.file.Path, err)
	}

	entry := ManifestEntry{
		Path:       job.file.Path,
		Title:      job.file.Title,
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UTC(),
	}

	if !opts.NoHash {
		hash, err := computeFileHash(job.file.Path)
		if err != nil {
			return ManifestEntry{}, fmt.Errorf("%s: hash: %w", job.file.Path, err)
		}
		entry.ContentHash = hash
	}

	d, err := prober.ProbeDuration(ctx, job.file.Path)
	if err != nil {
		entry.ProbeError = err.Error()
	} else {
		entry.DurationSeconds = d
	}
	if job.program {
		entry.SlotSeconds = clock.RoundUpToSlot(entry.DurationSeconds, opts.SlotSize)
	}
	return entry, nil
}

// computeFileHash computes the SHA-256 hash of a file.
func computeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func dropIndices(entries []ManifestEntry, drop []int) []ManifestEntry {
	if len(drop) == 0 {
		return entries
	}
	slices.Sort(drop)
	slices.Reverse(drop)
	for _, i := range drop {
		entries = append(entries[:i], entries[i+1:]...)
	}
	return entries
}
