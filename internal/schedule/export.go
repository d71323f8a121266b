/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/telestar/internal/clock"
)

const ruleWidth = 40

// ExportService writes finalized running orders to disk.
type ExportService struct {
	dir     string
	station string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewExportService creates an export service writing into dir.
func NewExportService(dir, station string, logger zerolog.Logger) *ExportService {
	return &ExportService{
		dir:     dir,
		station: station,
		now:     time.Now,
		logger:  logger.With().Str("component", "schedule_export").Logger(),
	}
}

// ExportResult lists the files written by Export.
type ExportResult struct {
	TXTPath  string
	CSVPath  string
	ICalPath string
}

// Export writes schedule_HHMM.txt, .csv and .ics for the block.
func (s *ExportService) Export(entries []Entry, day time.Time) (*ExportResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("export: empty schedule")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	base := "schedule_" + strings.ReplaceAll(entries[0].StartTime, ":", "")
	res := &ExportResult{
		TXTPath:  filepath.Join(s.dir, base+".txt"),
		CSVPath:  filepath.Join(s.dir, base+".csv"),
		ICalPath: filepath.Join(s.dir, base+".ics"),
	}

	var txt, csvBuf, ics bytes.Buffer
	if err := WriteTXT(&txt, s.station, entries, s.now()); err != nil {
		return nil, err
	}
	if err := WriteCSV(&csvBuf, entries); err != nil {
		return nil, err
	}
	if err := WriteICal(&ics, s.station, day, entries, s.now()); err != nil {
		return nil, err
	}

	for path, buf := range map[string]*bytes.Buffer{res.TXTPath: &txt, res.CSVPath: &csvBuf, res.ICalPath: &ics} {
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	s.logger.Info().
		Str("txt", res.TXTPath).
		Str("csv", res.CSVPath).
		Str("ics", res.ICalPath).
		Int("entries", len(entries)).
		Msg("schedule exported")
	return res, nil
}

// BlockEnd is the start of the last entry plus its duration.
func BlockEnd(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	last := entries[len(entries)-1]
	end, err := clock.AddWall(last.StartTime, last.Duration)
	if err != nil {
		return last.StartTime
	}
	return end
}

// WriteTXT writes the printable running order.
func WriteTXT(w io.Writer, station string, entries []Entry, generated time.Time) error {
	if len(entries) == 0 {
		return fmt.Errorf("export: empty schedule")
	}
	rule := strings.Repeat("-", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s BROADCAST BLOCK - %s START\n", strings.ToUpper(station), entries[0].StartTime)
	b.WriteString(rule + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s — %s\n", e.StartTime, e.Title)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Programs: %d\n", len(entries)-1)
	fmt.Fprintf(&b, "Block Ends: %s\n", BlockEnd(entries))
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format("2006-01-02 15:04"))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCSV writes Time,Title rows.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time", "Title"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.StartTime, e.Title}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteICal writes the block as floating-time calendar events on day. OFF AIR is omitted;
// entries that pass midnight roll onto the next date.
func WriteICal(w io.Writer, station string, day time.Time, entries []Entry, generated time.Time) error {
	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Telestar//Block Schedule//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:%s Block\r\n", escapeICalText(station)))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	var prev time.Time
	for _, e := range entries {
		wall, err := clock.ParseWall(e.StartTime)
		if err != nil {
			return err
		}
		start := date.Add(time.Duration(wall.Hour())*time.Hour + time.Duration(wall.Minute())*time.Minute)
		if !prev.IsZero() && start.Before(prev) {
			date = date.AddDate(0, 0, 1)
			start = start.AddDate(0, 0, 1)
		}
		prev = start
		if e.IsOffAir() {
			continue
		}

		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s@%s\r\n", uuid.NewString(), slugify(station)))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICalTime(generated)))
		buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", start.Format("20060102T150405")))
		buf.WriteString(fmt.Sprintf("DTEND:%s\r\n", start.Add(time.Duration(e.Duration)*time.Second).Format("20060102T150405")))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(e.Title)))
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
