/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package console drives operator review from a terminal.
// End of input answers every remaining prompt with its default.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/editor"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
)

// DefaultHour is used when the block start hour is invalid.
const DefaultHour = 18

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	// FallbackHour answers an invalid block start hour.
	FallbackHour int

	in    *bufio.Reader
	out   io.Writer
	width int
	eof   bool
}

// New creates a prompter. width is the timeline width, 0 for the default.
func New(in io.Reader, out io.Writer, width int) *Prompter {
	if width <= 0 {
		width = editor.DefaultTimelineWidth
	}
	return &Prompter{FallbackHour: DefaultHour, in: bufio.NewReader(in), out: out, width: width}
}

func (p *Prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// ask prints prompt and returns the trimmed answer.
func (p *Prompter) ask(prompt string) string {
	p.printf("%s", prompt)
	if p.eof {
		p.printf("\n")
		return ""
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		p.eof = true
		if line == "" {
			p.printf("\n")
		}
	}
	return strings.TrimSpace(line)
}

// BlockHour asks for the block start hour. Invalid answers fall back to FallbackHour.
func (p *Prompter) BlockHour() int {
	answer := p.ask("Enter program block start HOUR (00-23): ")
	hour, err := strconv.Atoi(answer)
	if err != nil || hour < 0 || hour > 23 {
		p.printf("Invalid input. Defaulting to %02d:00.\n", p.FallbackHour)
		return p.FallbackHour
	}
	return hour
}

// SelectPrograms lists programs and returns the chosen ones in the order typed.
// An empty answer selects all; an invalid one also selects all.
func (p *Prompter) SelectPrograms(programs []models.Program) []models.Program {
	p.printf("\nAvailable programs:\n")
	for i, prog := range programs {
		p.printf("%2d. %s (%d min)\n", i+1, prog.Title, prog.SlotDuration/60)
	}

	answer := p.ask("Enter program numbers to include (comma-separated) or Enter for all: ")
	selected := programs
	if answer != "" {
		idxs, err := parseIndexList(answer, len(programs))
		if err != nil {
			p.printf("Invalid input, selecting all programs.\n")
		} else {
			selected = make([]models.Program, 0, len(idxs))
			for _, i := range idxs {
				selected = append(selected, programs[i])
			}
		}
	}

	out := make([]models.Program, len(selected))
	for i, prog := range selected {
		prog.Order = i + 1
		out[i] = prog
	}
	return out
}

// ReviewSchedule runs the running-order edit loop until the operator approves.
func (p *Prompter) ReviewSchedule(ctx context.Context, b *schedule.Builder) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.printSchedule(b.Entries())

		switch choice := strings.ToLower(p.ask("\nOptions: [e]dit titles, [p]laceholders, [r]eorder, [d]elete, [y] approve: ")); choice {
		case "", "y":
			return nil
		case "e":
			p.editTitle(b)
		case "p":
			p.addPlaceholders(b)
		case "r":
			p.reorder(b)
		case "d":
			p.delete(b)
		default:
			p.printf("Unknown option %q.\n", choice)
		}
	}
}

func (p *Prompter) printSchedule(entries []schedule.Entry) {
	p.printf("\nPROGRAM SCHEDULE:\n")
	for i, e := range entries {
		label := ""
		if e.Duration > 0 {
			label = fmt.Sprintf(" (%d min)", e.Duration/60)
		}
		p.printf("%2d. %s - %s%s\n", i+1, e.StartTime, e.Title, label)
	}
}

func (p *Prompter) editTitle(b *schedule.Builder) {
	entries := b.Entries()
	idx, err := parseIndex(p.ask("Enter line number to edit title: "), len(entries))
	if err != nil {
		p.report(err)
		return
	}
	old := entries[idx].Title
	title := p.ask(fmt.Sprintf("Edit title for line %d [%s]: ", idx+1, old))
	if title == "" {
		return
	}
	p.report(b.EditTitle(idx, title))
}

func (p *Prompter) addPlaceholders(b *schedule.Builder) {
	n, err := strconv.Atoi(p.ask(fmt.Sprintf("How many placeholders (1-%d)? ", schedule.MaxPlaceholders)))
	if err != nil || n < 1 {
		n = 1
	}
	n = min(n, schedule.MaxPlaceholders)

	ps := make([]schedule.Placeholder, 0, n)
	for i := 0; i < n; i++ {
		title := p.ask(fmt.Sprintf("Enter placeholder title #%d: ", i+1))
		if title == "" {
			title = fmt.Sprintf("Placeholder %d", i+1)
		}
		p.printf("Select duration for '%s':\n", title)
		for k, d := range schedule.PlaceholderDurations {
			p.printf("%d) %s\n", k+1, durationLabel(d))
		}
		ps = append(ps, schedule.Placeholder{Title: title, Duration: p.durationChoice()})
	}
	p.report(b.AddPlaceholders(ps...))
}

func (p *Prompter) durationChoice() int {
	menu := schedule.PlaceholderDurations
	for {
		answer := p.ask(fmt.Sprintf("Enter 1-%d: ", len(menu)))
		if k, err := strconv.Atoi(answer); err == nil && k >= 1 && k <= len(menu) {
			return menu[k-1]
		}
		if p.eof {
			return menu[0]
		}
		p.printf("Invalid selection. Choose 1-%d.\n", len(menu))
	}
}

func durationLabel(seconds int) string {
	if seconds%3600 == 0 {
		return fmt.Sprintf("%d hr", seconds/3600)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%.1f hr", float64(seconds)/3600)
	}
	return fmt.Sprintf("%d min", seconds/60)
}

func (p *Prompter) reorder(b *schedule.Builder) {
	var titles []string
	for _, e := range b.Entries() {
		if !e.IsOffAir() {
			titles = append(titles, e.Title)
		}
	}
	p.printf("Current order:\n")
	for i, t := range titles {
		p.printf("%d. %s\n", i+1, t)
	}
	order, err := parseIndexList(p.ask("Enter new order (comma-separated indices): "), len(titles))
	if err != nil {
		p.report(err)
		return
	}
	p.report(b.Reorder(order))
}

func (p *Prompter) delete(b *schedule.Builder) {
	idxs, err := parseIndexList(p.ask("Enter line number(s) to delete, comma-separated: "), len(b.Entries()))
	if err != nil {
		p.report(err)
		return
	}
	p.report(b.Delete(idxs...))
}

// ReviewBreaks runs the break and mid-bumper review for one program.
func (p *Prompter) ReviewBreaks(ctx context.Context, ed *editor.Editor) (editor.Result, error) {
	prog := ed.Program()
	p.printf("\nBreak review: %s (%s of %s slot)\n", prog.Title,
		clock.FormatTimestamp(prog.ActualDuration), clock.FormatTimestamp(float64(prog.SlotDuration)))

	for ed.State() != editor.Done {
		if err := ctx.Err(); err != nil {
			return editor.Result{}, err
		}
		p.printf("\n%s", ed.Timeline(p.width))

		switch ed.State() {
		case editor.EditingBreaks:
			p.breakStep(ctx, ed)
		case editor.EditingMidBumper:
			p.midStep(ed)
		}
	}
	return ed.Result()
}

func (p *Prompter) breakStep(ctx context.Context, ed *editor.Editor) {
	answer := strings.ToLower(p.ask("[y] approve, [a]dd breaks, [r]escan, or break numbers to remove: "))
	switch answer {
	case "", "y":
		p.report(ed.Approve())
	case "a":
		var added []float64
		for _, field := range splitList(p.ask("Enter break times (mm:ss or seconds, comma-separated): ")) {
			ts, err := clock.ParseTimestamp(field)
			if err != nil {
				p.report(err)
				return
			}
			added = append(added, ts)
		}
		if len(added) > 0 {
			p.report(ed.Add(added...))
		}
	case "r":
		p.report(ed.Rescan(ctx))
	default:
		idxs, err := parseIndexList(answer, len(ed.Breaks()))
		if err != nil {
			p.report(err)
			return
		}
		p.report(ed.Remove(idxs...))
	}
}

func (p *Prompter) midStep(ed *editor.Editor) {
	mid := ed.Placement().MidIndex()
	answer := strings.ToLower(p.ask(fmt.Sprintf("Mid bumper after commercial block %d. [y] approve, [a]djust block, [d]efault, [b]ack: ", mid+1)))
	switch answer {
	case "", "y":
		p.report(ed.Approve())
	case "d":
		p.report(ed.ResetMid())
	case "a":
		n := len(ed.Breaks()) - 1
		block, err := strconv.Atoi(p.ask(fmt.Sprintf("Commercial block number (1-%d): ", n)))
		if err != nil {
			p.report(fmt.Errorf("%w: not a number", models.ErrInvalidInput))
			return
		}
		p.report(ed.SetMid(block))
	case "b":
		p.report(ed.Back())
	default:
		p.printf("Unknown option %q.\n", answer)
	}
}

// report prints operator-facing errors. Input errors keep the previous state.
func (p *Prompter) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrInvalidTransition) {
		p.printf("Invalid input: %v\n", err)
		return
	}
	p.printf("Error: %v\n", err)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseIndex converts a 1-based line number to a 0-based index below n.
func parseIndex(s string, n int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > n {
		return 0, fmt.Errorf("%w: line %q not in 1-%d", models.ErrInvalidInput, s, n)
	}
	return v - 1, nil
}

// parseIndexList converts "1, 3,2" to 0-based indices below n.
func parseIndexList(s string, n int) ([]int, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no numbers given", models.ErrInvalidInput)
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		idx, err := parseIndex(f, n)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
