/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package block orchestrates one broadcast block from schedule review to the final file.
package block

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/friendsincode/telestar/internal/assembler"
	"github.com/friendsincode/telestar/internal/bumper"
	"github.com/friendsincode/telestar/internal/clock"
	"github.com/friendsincode/telestar/internal/editor"
	"github.com/friendsincode/telestar/internal/mediaengine"
	"github.com/friendsincode/telestar/internal/models"
	"github.com/friendsincode/telestar/internal/schedule"
	"github.com/friendsincode/telestar/internal/telemetry"
	"github.com/friendsincode/telestar/internal/version"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// FinalName is the concatenated block written to the output directory.
	FinalName = "FULL_SCHEDULE.mp4"
	// ManifestName is the concat list for FinalName.
	ManifestName = "concat_list.txt"
)

var (
	ErrNoPrograms      = errors.New("no programs selected")
	ErrNothingRendered = errors.New("no programs were rendered")
)

// Reviewer is the operator surface. console.Prompter is the interactive implementation.
type Reviewer interface {
	BlockHour() int
	SelectPrograms(programs []models.Program) []models.Program
	ReviewSchedule(ctx context.Context, b *schedule.Builder) error
	ReviewBreaks(ctx context.Context, ed *editor.Editor) (editor.Result, error)
}

// ProgramRenderer turns one plan into a program file.
type ProgramRenderer interface {
	Render(ctx context.Context, req assembler.RenderRequest) error
}

// Concatenator joins program files listed in a manifest.
type Concatenator interface {
	Concat(ctx context.Context, manifestPath, out string) error
}

// Exporter writes the finalized schedule.
type Exporter interface {
	Export(entries []schedule.Entry, day time.Time) (*schedule.ExportResult, error)
}

// Recorder persists the block outcome.
type Recorder interface {
	Record(ctx context.Context, block *models.Block) error
}

// Deps are the collaborators of a Runner. Exporter and Recorder are optional.
type Deps struct {
	Reviewer Reviewer
	Detector editor.Rescanner
	Renderer ProgramRenderer
	Concat   Concatenator
	Exporter Exporter
	Recorder Recorder
	Composer bumper.Composer
}

// Options control a single run.
type Options struct {
	OutputDir      string
	BumperDuration float64
	Seed           int64 // 0 derives a seed from the clock
	DryRun         bool  // plan every program without rendering
	ScheduleOnly   bool  // stop after the schedule is exported
	Out            io.Writer
	Now            func() time.Time
}

// Outcome is the result for one program.
type Outcome struct {
	Program models.Program
	Review  editor.Result
	Plan    assembler.Plan
	Used    assembler.Usage // commercials placed in this program
	Status  models.RunStatus
	Output  string
	Err     error
}

// Report summarizes a run.
type Report struct {
	Start     time.Time
	Entries   []schedule.Entry
	Export    *schedule.ExportResult
	Outcomes  []Outcome
	FinalPath string
	Seed      int64
	BlockID   string
}

// Rendered returns the outputs of successfully rendered programs in block order.
func (r *Report) Rendered() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == models.RunStatusOK {
			out = append(out, o.Output)
		}
	}
	return out
}

// Runner drives the block workflow.
type Runner struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger
}

// NewRunner creates a runner.
func NewRunner(deps Deps, opts Options, logger zerolog.Logger) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Runner{
		deps:   deps,
		opts:   opts,
		logger: logger.With().Str("component", "block").Logger(),
	}
}

// Run reviews the schedule, reviews every program's breaks, then plans and renders
// them in schedule order. A failing program is logged and skipped; the rest still
// reach the final concatenation.
func (r *Runner) Run(ctx context.Context, programs []models.Program, pool []models.Commercial) (report *Report, err error) {
	ctx, span := telemetry.StartSpan(ctx, "block.run",
		attribute.Int("programs", len(programs)),
		attribute.Int("commercials", len(pool)),
		attribute.Bool("dry_run", r.opts.DryRun),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	report = &Report{Seed: r.opts.Seed}
	if report.Seed == 0 {
		report.Seed = r.opts.Now().UnixNano()
	}
	span.SetAttributes(telemetry.AttrSeed.Int64(report.Seed))

	hour := r.deps.Reviewer.BlockHour()
	start := clock.BlockStart(hour)
	now := r.opts.Now()
	report.Start = time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), 0, 0, 0, time.Local)

	selected := r.deps.Reviewer.SelectPrograms(programs)
	if len(selected) == 0 {
		return report, ErrNoPrograms
	}

	stageStart := time.Now()
	builder := schedule.NewBuilder(start, selected)
	if err := r.deps.Reviewer.ReviewSchedule(ctx, builder); err != nil {
		return report, fmt.Errorf("review schedule: %w", err)
	}
	entries, ordered := builder.Finalize()
	report.Entries = entries
	telemetry.ObserveStage("schedule", stageStart)

	if r.deps.Exporter != nil {
		res, err := r.deps.Exporter.Export(entries, report.Start)
		if err != nil {
			r.logger.Warn().Err(err).Msg("schedule export failed")
		}
		report.Export = res
	}

	if r.opts.ScheduleOnly {
		return report, nil
	}
	if len(ordered) == 0 {
		return report, ErrNoPrograms
	}

	r.logger.Info().
		Str("start", clock.Wall(start)).
		Str("end", schedule.BlockEnd(entries)).
		Int("programs", len(ordered)).
		Int64("seed", report.Seed).
		Msg("schedule approved")

	// Review every program before rendering any.
	for _, p := range ordered {
		report.Outcomes = append(report.Outcomes, r.review(ctx, p))
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	if !r.opts.DryRun {
		if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
			return report, fmt.Errorf("create output dir: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(report.Seed))
	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		if o.Status == models.RunStatusSkipped {
			continue
		}
		r.assemble(ctx, o, pool, rng, entries)
		if err := ctx.Err(); err != nil {
			r.record(ctx, report)
			return report, err
		}
	}

	if !r.opts.DryRun {
		if err := r.finish(ctx, report); err != nil {
			r.record(ctx, report)
			return report, err
		}
	}

	r.record(ctx, report)
	telemetry.LastBlockTimestamp.Set(float64(r.opts.Now().Unix()))
	return report, nil
}

func (r *Runner) review(ctx context.Context, p models.Program) Outcome {
	o := Outcome{Program: p}
	logger := r.logger.With().Str("program", p.Title).Logger()

	stageStart := time.Now()
	initial := r.deps.Detector.Detect(ctx, p.Path, p.ActualDuration)
	telemetry.ObserveStage("detect", stageStart)

	ed := editor.New(p, initial, r.opts.BumperDuration, r.deps.Detector)
	res, err := r.deps.Reviewer.ReviewBreaks(ctx, ed)
	if err != nil {
		logger.Error().Err(err).Msg("break review failed, program skipped")
		o.Status = models.RunStatusSkipped
		o.Err = err
		return o
	}
	o.Review = res
	telemetry.BreaksPerProgram.Observe(float64(len(res.Breaks)))

	logger.Debug().
		Floats64("breaks", res.Breaks).
		Int("mid", res.Placement.MidIndex()).
		Float64("per_break", res.CommercialPerBreak).
		Msg("breaks approved")
	return o
}

func (r *Runner) assemble(ctx context.Context, o *Outcome, pool []models.Commercial, rng *rand.Rand, entries []schedule.Entry) {
	p := o.Program
	logger := r.logger.With().Str("program", p.Title).Logger()

	stageStart := time.Now()
	o.Plan, o.Used = assembler.Build(assembler.PlanRequest{
		Program:        p,
		Breaks:         o.Review.Breaks,
		PerBreak:       o.Review.CommercialPerBreak,
		Placement:      o.Review.Placement,
		Pool:           pool,
		Used:           assembler.NewUsage(),
		Rng:            rng,
		BumperDuration: r.opts.BumperDuration,
	})
	telemetry.ObserveStage("plan", stageStart)
	logger.Debug().
		Int("segments", len(o.Plan.Segments)).
		Int("commercials", len(o.Used)).
		Msg("program planned")

	if r.opts.DryRun {
		o.Status = models.RunStatusPlanned
		if err := WritePlan(r.opts.Out, o.Plan); err != nil {
			logger.Warn().Err(err).Msg("print plan")
		}
		telemetry.ProgramsTotal.WithLabelValues(string(o.Status)).Inc()
		return
	}

	o.Output = filepath.Join(r.opts.OutputDir, fmt.Sprintf("temp_%02d_%s.mp4", p.Order, SafeTitle(p.Title)))
	req := assembler.RenderRequest{
		Plan:          o.Plan,
		MidBumperText: r.deps.Composer.Mid(p.Title, entries),
		EndBumperText: r.deps.Composer.End(p.Title, entries),
		OutputPath:    o.Output,
	}

	spanCtx, span := telemetry.StartSpan(ctx, "block.render", telemetry.ProgramAttrs(p.Title, p.Order)...)
	stageStart = time.Now()
	logger.Info().Int("segments", len(o.Plan.Segments)).Msg("rendering program")
	err := r.deps.Renderer.Render(spanCtx, req)
	telemetry.ObserveStage("render", stageStart)
	telemetry.EndSpan(span, err)

	if err != nil {
		o.Status = models.RunStatusFailed
		o.Err = err
		var terr *mediaengine.TransformError
		if errors.As(err, &terr) {
			telemetry.MediaToolFailures.WithLabelValues(terr.Op).Inc()
		}
		logger.Error().Err(err).Msg("failed to process program")
		telemetry.ProgramsTotal.WithLabelValues(string(o.Status)).Inc()
		return
	}

	o.Status = models.RunStatusOK
	totals := o.Plan.Totals()
	telemetry.SegmentSeconds.WithLabelValues(string(models.SegmentProgramSlice)).Add(totals.Program)
	telemetry.SegmentSeconds.WithLabelValues(string(models.SegmentCommercial)).Add(totals.Commercial)
	telemetry.SegmentSeconds.WithLabelValues(string(models.SegmentFiller)).Add(totals.Filler)
	telemetry.SegmentSeconds.WithLabelValues("bumper").Add(totals.Bumper)
	telemetry.ProgramsTotal.WithLabelValues(string(o.Status)).Inc()
	logger.Info().Str("output", o.Output).Msg("finished processing")
}

func (r *Runner) finish(ctx context.Context, report *Report) error {
	rendered := report.Rendered()
	if len(rendered) == 0 {
		r.logger.Error().Msg("no programs were successfully processed, nothing to merge")
		return ErrNothingRendered
	}

	manifest := filepath.Join(r.opts.OutputDir, ManifestName)
	if err := assembler.WriteManifest(manifest, rendered); err != nil {
		return err
	}

	final := filepath.Join(r.opts.OutputDir, FinalName)
	stageStart := time.Now()
	if err := r.deps.Concat.Concat(ctx, manifest, final); err != nil {
		var terr *mediaengine.TransformError
		if errors.As(err, &terr) {
			telemetry.MediaToolFailures.WithLabelValues(terr.Op).Inc()
		}
		return fmt.Errorf("merge block: %w", err)
	}
	telemetry.ObserveStage("concat", stageStart)

	report.FinalPath = final
	r.logger.Info().Str("output", final).Int("programs", len(rendered)).Msg("final continuous program ready")
	return nil
}

func (r *Runner) record(ctx context.Context, report *Report) {
	if r.deps.Recorder == nil {
		return
	}
	block := toBlock(report, r.opts)
	if err := r.deps.Recorder.Record(context.WithoutCancel(ctx), block); err != nil {
		r.logger.Warn().Err(err).Msg("record block history")
		return
	}
	report.BlockID = block.ID
}

func toBlock(report *Report, opts Options) *models.Block {
	block := &models.Block{
		StartTime:  clock.Wall(report.Start),
		EndTime:    schedule.BlockEnd(report.Entries),
		OutputPath: report.FinalPath,
		Seed:       report.Seed,
		DryRun:     opts.DryRun,
		Version:    version.Version,
	}
	for _, e := range report.Entries {
		block.Entries = append(block.Entries, models.BlockEntry{
			StartTime: e.StartTime,
			Title:     e.Title,
			Duration:  e.Duration,
		})
	}
	for _, o := range report.Outcomes {
		run := models.ProgramRun{
			Title:              o.Program.Title,
			Path:               o.Program.Path,
			ActualDuration:     o.Program.ActualDuration,
			SlotDuration:       o.Program.SlotDuration,
			BreakCount:         len(o.Review.Breaks),
			CommercialPerBreak: o.Review.CommercialPerBreak,
			MidBumper:          o.Review.Placement.MidIndex(),
			CommercialsAired:   len(o.Used),
			Status:             o.Status,
			OutputPath:         o.Output,
		}
		if o.Status == "" {
			run.Status = models.RunStatusSkipped
		}
		if o.Err != nil {
			run.Error = o.Err.Error()
		}
		for _, s := range o.Plan.Segments {
			run.Segments = append(run.Segments, models.SegmentRecord{
				Kind:       s.Kind,
				Source:     s.Source,
				Start:      s.Start,
				Duration:   s.Duration,
				BreakIndex: s.Break,
			})
		}
		block.Runs = append(block.Runs, run)
	}
	return block
}

// SafeTitle keeps letters, digits, spaces, underscores and hyphens, trimming trailing spaces.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
