package storage

import (
	"context"
	"time"
)

// Storage records the history of documentation runs
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, runID int64) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Summary operations
	AddFileSummary(ctx context.Context, summary *FileSummary) error
	ListFileSummaries(ctx context.Context, runID int64) ([]*FileSummary, error)
	SearchSummaries(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Database operations
	Close() error
}

// RunStatus is the lifecycle state of a run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is one recorded documentation run
type Run struct {
	ID       int64
	Source   string // Repository as given by the user
	Root     string // Local path that was traversed
	Provider string
	Model    string
	Output   string
	Status   RunStatus
	Error    string

	FilesDiscovered int
	FilesSummarized int
	FilesSentinel   int
	ChunksProcessed int
	DegradedCalls   int
	BackendCalls    int

	StartedAt  time.Time
	FinishedAt *time.Time // Nil while running
}

// Duration returns the wall time of a finished run
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileSummary is the recorded summary of one file within a run
type FileSummary struct {
	ID        int64
	RunID     int64
	Path      string // Relative to the run root
	Summary   string
	Chunks    int
	Degraded  bool
	Sentinel  bool
	CreatedAt time.Time
}

// SearchResult is one full-text match over recorded summaries
type SearchResult struct {
	Summary FileSummary
	Snippet string  // Matched excerpt with [brackets] around hits
	Rank    float64 // BM25; lower is better
}
