/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library discovers program and commercial files and resolves their durations.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Accepted file extensions.
var (
	ProgramExtensions    = []string{".mp4", ".mov", ".mkv", ".avi"}
	CommercialExtensions = []string{".mp4", ".mov"}
)

// File is a discovered media file. Title is the file name without extension.
type File struct {
	Path  string
	Title string
}

// Scanner lists media files in a folder.
type Scanner struct {
	// VerifyContent skips files whose content does not sniff as video.
	VerifyContent bool
	logger        zerolog.Logger
}

// NewScanner creates a scanner.
func NewScanner(verifyContent bool, logger zerolog.Logger) *Scanner {
	return &Scanner{
		VerifyContent: verifyContent,
		logger:        logger.With().Str("component", "library").Logger(),
	}
}

// Scan returns the files in dir with one of exts, sorted by name. Subdirectories are not walked.
func (s *Scanner) Scan(dir string, exts []string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(exts, ext) {
			continue
		}
		path := filepath.Join(dir, name)
		if s.VerifyContent && !isVideo(path) {
			s.logger.Warn().Str("path", path).Msg("skipping file that is not video")
			continue
		}
		files = append(files, File{Path: path, Title: strings.TrimSuffix(name, filepath.Ext(name))})
	}

	slices.SortFunc(files, func(a, b File) int { return strings.Compare(filepath.Base(a.Path), filepath.Base(b.Path)) })
	return files, nil
}

func isVideo(path string) bool {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			return true
		}
	}
	return false
}
