package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/repodoc/internal/aggregator"
	"github.com/dshills/repodoc/internal/chunker"
	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/discovery"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/pkg/types"
)

// ErrNoFiles is returned when discovery finds nothing to summarize
var ErrNoFiles = errors.New("no code files found")

// Outcome classifies how a file was handled
type Outcome string

const (
	OutcomeSummarized Outcome = "summarized"
	OutcomeDegraded   Outcome = "degraded" // File summary is a degraded marker
	OutcomeSentinel   Outcome = "sentinel" // Empty, unreadable or binary
)

// Progress is reported after each file completes
type Progress struct {
	Index   int // 1-based
	Total   int
	Path    string
	Outcome Outcome
	Chunks  int
	Elapsed time.Duration // Time spent on this file
}

// Result is the outcome of a successful run
type Result struct {
	Root      string
	RunID     int64 // Zero unless a recorder is attached
	Summaries *types.SummaryMap
	Manifest  string // Top-level manifest excerpts for the report
	Stats     types.RunStats
}

// RunInfo describes a run for the history recorder
type RunInfo struct {
	Source string // Repository as given by the user
	Output string
}

// Option configures a Driver
type Option func(*Driver)

// WithProgress registers a callback invoked after each file completes
func WithProgress(fn func(Progress)) Option {
	return func(d *Driver) { d.onProgress = fn }
}

// WithFileStart registers a callback invoked before each file is processed
func WithFileStart(fn func(index, total int, path string)) Option {
	return func(d *Driver) { d.onStart = fn }
}

// WithRecorder records the run and its summaries in store
func WithRecorder(store storage.Storage, info RunInfo) Option {
	return func(d *Driver) {
		d.store = store
		d.info = info
	}
}

// WithLogger replaces the logger used for recoverable problems
func WithLogger(logger *log.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// Driver sequences discovery, chunking and aggregation for one tree
type Driver struct {
	cfg        config.Config
	chunker    *chunker.Chunker
	aggregator *aggregator.Aggregator

	onProgress func(Progress)
	onStart    func(index, total int, path string)
	store      storage.Storage
	info       RunInfo
	logger     *log.Logger
}

// New creates a driver from an explicit configuration
func New(cfg config.Config, gen aggregator.Generator, opts ...Option) *Driver {
	d := &Driver{
		cfg:     cfg,
		chunker: chunker.New(cfg.ChunkSize),
		aggregator: aggregator.New(gen, aggregator.Options{
			SkipCombineForSingleChunk: cfg.SkipCombineForSingleChunk,
		}),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run documents the tree at root. Per-file failures are recorded as sentinel
// or degraded summaries and never abort the run.
func (d *Driver) Run(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	res := &Result{Root: root, Summaries: types.NewSummaryMap()}

	run := d.openRun(ctx, root)

	files, err := discovery.Discover(root, d.discoveryOptions())
	if err != nil {
		d.closeRun(ctx, run, res, storage.RunFailed, err)
		return nil, fmt.Errorf("discover files: %w", err)
	}
	if len(files) == 0 {
		d.closeRun(ctx, run, res, storage.RunFailed, ErrNoFiles)
		return nil, ErrNoFiles
	}
	res.Stats.FilesDiscovered = len(files)
	if run != nil {
		res.RunID = run.ID
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			d.closeRun(ctx, run, res, storage.RunCancelled, err)
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		if d.onStart != nil {
			d.onStart(i+1, len(files), file.RelPath)
		}

		fileStart := time.Now()
		summary, chunks, outcome, err := d.summarizeFile(ctx, file, &res.Stats)
		if err != nil {
			d.closeRun(ctx, run, res, storage.RunCancelled, err)
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		res.Summaries.Set(file.RelPath, summary)
		d.recordSummary(ctx, run, file.RelPath, summary, chunks, outcome)

		if d.onProgress != nil {
			d.onProgress(Progress{
				Index:   i + 1,
				Total:   len(files),
				Path:    file.RelPath,
				Outcome: outcome,
				Chunks:  chunks,
				Elapsed: time.Since(fileStart),
			})
		}
	}

	res.Manifest = DetectManifest(root)
	res.Stats.Duration = time.Since(start)
	d.closeRun(ctx, run, res, storage.RunCompleted, nil)
	return res, nil
}

// summarizeFile returns the summary, chunk count and outcome of one file.
// The error is non-nil only when the context ended the file early.
func (d *Driver) summarizeFile(ctx context.Context, file types.FileRecord, stats *types.RunStats) (string, int, Outcome, error) {
	text, ok := readText(file.Path)
	if !ok {
		stats.FilesSentinel++
		return types.SentinelEmptyOrUnreadable, 0, OutcomeSentinel, nil
	}

	chunks := d.chunker.Split(text)
	fr := d.aggregator.SummarizeFile(ctx, chunks, file.RelPath, d.cfg.Model)
	if fr.Err != nil {
		return "", len(chunks), "", fr.Err
	}

	stats.FilesSummarized++
	stats.ChunksProcessed += len(chunks)
	stats.SummaryCalls += fr.Calls
	stats.BackendCalls += fr.BackendCalls
	stats.DegradedCalls += fr.Degraded

	if types.IsDegraded(fr.Summary) {
		return fr.Summary, len(chunks), OutcomeDegraded, nil
	}
	return fr.Summary, len(chunks), OutcomeSummarized, nil
}

// readText returns the file content when it is readable, valid UTF-8 and not
// blank
func readText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return "", false
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func (d *Driver) discoveryOptions() discovery.Options {
	opts := d.cfg.DiscoveryOptions()
	opts.OnVisit = func(v discovery.Visit) {
		if v.Skipped && v.Reason != discovery.SkipVisited {
			d.logger.Printf("Warning: skipping directory %s: %s", v.Dir, v.Reason)
		}
	}
	return opts
}

// History recording; failures are logged and never fail the run

func (d *Driver) openRun(ctx context.Context, root string) *storage.Run {
	if d.store == nil {
		return nil
	}
	run := &storage.Run{
		Source:   d.info.Source,
		Root:     root,
		Provider: d.cfg.Provider,
		Model:    d.cfg.Model,
		Output:   d.info.Output,
	}
	if run.Source == "" {
		run.Source = root
	}
	if err := d.store.CreateRun(ctx, run); err != nil {
		d.logger.Printf("Warning: failed to record run: %v", err)
		return nil
	}
	return run
}

func (d *Driver) recordSummary(ctx context.Context, run *storage.Run, path, summary string, chunks int, outcome Outcome) {
	if run == nil {
		return
	}
	err := d.store.AddFileSummary(context.WithoutCancel(ctx), &storage.FileSummary{
		RunID:    run.ID,
		Path:     path,
		Summary:  summary,
		Chunks:   chunks,
		Degraded: outcome == OutcomeDegraded,
		Sentinel: outcome == OutcomeSentinel,
	})
	if err != nil {
		d.logger.Printf("Warning: failed to record summary for %s: %v", path, err)
	}
}

func (d *Driver) closeRun(ctx context.Context, run *storage.Run, res *Result, status storage.RunStatus, cause error) {
	if run == nil {
		return
	}
	run.Status = status
	if cause != nil {
		run.Error = cause.Error()
	}
	run.FilesDiscovered = res.Stats.FilesDiscovered
	run.FilesSummarized = res.Stats.FilesSummarized
	run.FilesSentinel = res.Stats.FilesSentinel
	run.ChunksProcessed = res.Stats.ChunksProcessed
	run.DegradedCalls = res.Stats.DegradedCalls
	run.BackendCalls = res.Stats.BackendCalls

	// A cancelled run still gets its final row
	if err := d.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		d.logger.Printf("Warning: failed to finish run %d: %v", run.ID, err)
	}
}
