// Package runner schedules extraction units over a set of source files.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/intl-extract/internal/cache"
	"github.com/mvp-joe/intl-extract/internal/diag"
	"github.com/mvp-joe/intl-extract/internal/messages"
	"github.com/mvp-joe/intl-extract/internal/parsers"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Options configures a Runner.
type Options struct {
	Extractor   messages.Options
	Concurrency int

	// Manifest enables incremental runs when non-nil.
	Manifest *cache.Manifest
	// Results enables the in-memory result cache when non-nil.
	Results *cache.ResultCache

	Progress ProgressReporter
	Logger   *slog.Logger
}

// FileResult is the outcome of one unit.
type FileResult struct {
	Path   string
	Result *messages.Result
	Err    error
	// Reused is set when the result came from a cache instead of extraction.
	Reused bool
}

// Summary aggregates the outcome of a run.
type Summary struct {
	RunID     string
	Files     int
	Extracted int
	Reused    int
	Skipped   int
	Failed    int
	Messages  int
	Warnings  int
	Duration  time.Duration
}

// Report is the outcome of a run. Files is in input order.
type Report struct {
	Files   []FileResult
	Summary Summary
}

// Failed reports whether any unit failed.
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0
}

// Messages returns every extracted descriptor in file order, then insertion order.
func (r *Report) Messages() []messages.Descriptor {
	out := []messages.Descriptor{}
	for _, f := range r.Files {
		if f.Err == nil && f.Result != nil {
			out = append(out, f.Result.Messages...)
		}
	}
	return out
}

// Runner extracts many units concurrently. A failing unit never stops the others.
type Runner struct {
	opts      Options
	parser    *parsers.Parser
	extractor *messages.Extractor
	logger    *slog.Logger
}

// New creates a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Extractor.Logger == nil {
		opts.Extractor.Logger = opts.Logger
	}

	extractor, err := messages.New(opts.Extractor)
	if err != nil {
		return nil, err
	}

	return &Runner{
		opts:      opts,
		parser:    parsers.New(),
		extractor: extractor,
		logger:    opts.Logger,
	}, nil
}

// Run extracts every file and returns per-file results in input order. The
// returned error is only non-nil when the run itself could not proceed, unit
// failures are reported through the Report.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	report := &Report{Files: make([]FileResult, len(files))}

	if r.opts.Manifest != nil {
		fingerprint := r.extractor.Options().Fingerprint()
		dropped, err := r.opts.Manifest.Bind(ctx, fingerprint)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			r.logger.Debug("extractor settings changed, dropped manifest entries",
				"settings", fingerprint, "entries", dropped)
		}

		runID, err := r.opts.Manifest.BeginRun(ctx, r.extractor.Options().WorkingDir)
		if err != nil {
			return nil, err
		}
		report.Summary.RunID = runID
	}

	r.opts.Progress.OnExtractionStart(len(files))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, path := range files {
		g.Go(func() error {
			report.Files[i] = r.runFile(ctx, report.Summary.RunID, path)
			r.opts.Progress.OnFileProcessed(path, report.Files[i].Err)
			return nil
		})
	}
	_ = g.Wait()

	report.Summary = summarize(report, start)

	if r.opts.Manifest != nil {
		stats := cache.RunStats{
			Files:  report.Summary.Files,
			Reused: report.Summary.Reused,
			Failed: report.Summary.Failed,
		}
		if err := r.opts.Manifest.FinishRun(context.WithoutCancel(ctx), report.Summary.RunID, stats); err != nil {
			r.logger.Warn("failed to finish manifest run", "run", report.Summary.RunID, "error", err)
		}
	}

	r.opts.Progress.OnComplete(report.Summary)
	r.logger.Debug("extraction complete",
		"files", report.Summary.Files,
		"messages", report.Summary.Messages,
		"failed", report.Summary.Failed,
		"duration", report.Summary.Duration)

	return report, ctx.Err()
}

func summarize(report *Report, start time.Time) Summary {
	s := report.Summary
	s.Files = len(report.Files)
	s.Duration = time.Since(start)
	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			s.Failed++
			continue
		case f.Reused:
			s.Reused++
		default:
			s.Extracted++
		}
		if f.Result.Skipped {
			s.Skipped++
		}
		s.Messages += len(f.Result.Messages)
		s.Warnings += len(f.Result.Warnings)
	}
	return s
}

func (r *Runner) runFile(ctx context.Context, runID, path string) FileResult {
	fr := FileResult{Path: path}

	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return fr
	}
	hash := cache.HashContent(source)

	if res, ok := r.cached(ctx, path, hash); ok {
		fr.Result = res
		fr.Reused = true
		return fr
	}

	res, err := r.extract(ctx, path, source)
	if err != nil {
		fr.Err = err
		r.forget(ctx, path)
		return fr
	}
	fr.Result = res

	if r.opts.Manifest != nil {
		if err := r.opts.Manifest.Record(ctx, runID, hash, res); err != nil {
			r.logger.Warn("failed to record manifest entry", "file", path, "error", err)
		}
	}
	if r.opts.Results != nil {
		r.opts.Results.Put(path, hash, res)
	}
	return fr
}

func (r *Runner) extract(ctx context.Context, path string, source []byte) (*messages.Result, error) {
	file, err := r.parser.Parse(ctx, path, source)
	if err != nil {
		return nil, err
	}
	return r.extractor.Run(ctx, file)
}

// cached returns a previous result for unchanged content. Results reused from
// the manifest get their sidecar rewritten so the output tree stays complete.
func (r *Runner) cached(ctx context.Context, path, hash string) (*messages.Result, bool) {
	if r.opts.Results != nil {
		if res, ok := r.opts.Results.Get(path, hash); ok {
			r.logger.Debug("reusing in-memory result", "file", path)
			return res, true
		}
	}

	if r.opts.Manifest == nil {
		return nil, false
	}
	entry, ok, err := r.opts.Manifest.Lookup(ctx, path, hash)
	if err != nil {
		r.logger.Warn("manifest lookup failed", "file", path, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	res := entry.Result()
	if err := r.restoreSidecar(res); err != nil {
		r.logger.Warn("failed to restore sidecar", "file", path, "error", err)
		return nil, false
	}
	r.logger.Debug("reusing manifest entry", "file", path, "run", entry.RunID)

	if r.opts.Results != nil {
		r.opts.Results.Put(path, hash, res)
	}
	return res, true
}

func (r *Runner) restoreSidecar(res *messages.Result) error {
	opts := r.extractor.Options()
	if res.Skipped || opts.MessagesDir == "" {
		return nil
	}
	path, err := messages.SidecarPath(opts.MessagesDir, opts.WorkingDir, res.File)
	if err != nil {
		return err
	}
	if err := messages.WriteSidecar(path, res.Messages); err != nil {
		return err
	}
	res.OutputPath = path
	return nil
}

func (r *Runner) forget(ctx context.Context, path string) {
	if r.opts.Results != nil {
		r.opts.Results.Invalidate(path)
	}
	if r.opts.Manifest != nil {
		if err := r.opts.Manifest.Forget(context.WithoutCancel(ctx), path); err != nil {
			r.logger.Warn("failed to forget manifest entry", "file", path, "error", err)
		}
	}
}

// Diagnostics returns every diagnostic of the report in file order: the
// warnings of successful units and the fatal diagnostic of failed ones.
// Failures that are not diagnostics are wrapped as ExtractionError.
func (r *Report) Diagnostics() []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, asDiagnostic(f.Path, f.Err))
			continue
		}
		out = append(out, f.Result.Warnings...)
	}
	return out
}

func asDiagnostic(path string, err error) *diag.Diagnostic {
	if d, ok := diag.As(err); ok {
		return d
	}
	return diag.New(diag.ExtractionError, path, 0, 0, err.Error())
}
