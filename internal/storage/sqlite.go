package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyQuery is returned when a search query has no terms
	ErrEmptyQuery = errors.New("search query cannot be empty")
)

const (
	DefaultListLimit   = 20
	DefaultSearchLimit = 10
	MaxLimit           = 1000
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Run operations

func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = RunRunning
	}
	query := `
		INSERT INTO runs (source, root_path, provider, model, output, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.querier().ExecContext(ctx, query,
		run.Source, run.Root, run.Provider, run.Model, run.Output, string(run.Status), run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// FinishRun stores the final status and counters of run. A zero FinishedAt
// is set to the current time.
func (s *SQLiteStorage) FinishRun(ctx context.Context, run *Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}
	query := `
		UPDATE runs SET
			root_path = ?, output = ?, status = ?, error = ?,
			files_discovered = ?, files_summarized = ?, files_sentinel = ?,
			chunks_processed = ?, degraded_calls = ?, backend_calls = ?,
			finished_at = ?
		WHERE id = ?
	`
	result, err := s.querier().ExecContext(ctx, query,
		run.Root, run.Output, string(run.Status), run.Error,
		run.FilesDiscovered, run.FilesSummarized, run.FilesSentinel,
		run.ChunksProcessed, run.DegradedCalls, run.BackendCalls,
		*run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `
	id, source, root_path, provider, model, output, status, error,
	files_discovered, files_summarized, files_sentinel, chunks_processed,
	degraded_calls, backend_calls, started_at, finished_at
`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var status string
	var finished sql.NullTime
	err := row.Scan(
		&run.ID, &run.Source, &run.Root, &run.Provider, &run.Model, &run.Output, &status, &run.Error,
		&run.FilesDiscovered, &run.FilesSummarized, &run.FilesSentinel, &run.ChunksProcessed,
		&run.DegradedCalls, &run.BackendCalls, &run.StartedAt, &finished,
	)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func (s *SQLiteStorage) GetRun(ctx context.Context, runID int64) (*Run, error) {
	row := s.querier().QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	limit = clampLimit(limit, DefaultListLimit)
	rows, err := s.querier().QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summary operations

func (s *SQLiteStorage) AddFileSummary(ctx context.Context, summary *FileSummary) error {
	query := `
		INSERT INTO file_summaries (run_id, path, summary, chunks, degraded, sentinel, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := s.querier().ExecContext(ctx, query,
		summary.RunID, summary.Path, summary.Summary, summary.Chunks,
		summary.Degraded, summary.Sentinel, now)
	if err != nil {
		if isConstraintError(err, "UNIQUE") {
			return fmt.Errorf("%w: %s in run %d", ErrAlreadyExists, summary.Path, summary.RunID)
		}
		if isConstraintError(err, "FOREIGN KEY") {
			return fmt.Errorf("%w: run %d", ErrNotFound, summary.RunID)
		}
		return fmt.Errorf("failed to add file summary: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	summary.ID = id
	summary.CreatedAt = now
	return nil
}

// ListFileSummaries returns the summaries of a run in recording order
func (s *SQLiteStorage) ListFileSummaries(ctx context.Context, runID int64) ([]*FileSummary, error) {
	query := `
		SELECT id, run_id, path, summary, chunks, degraded, sentinel, created_at
		FROM file_summaries
		WHERE run_id = ?
		ORDER BY id
	`
	rows, err := s.querier().QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]*FileSummary, 0)
	for rows.Next() {
		var fs FileSummary
		if err := rows.Scan(&fs.ID, &fs.RunID, &fs.Path, &fs.Summary, &fs.Chunks,
			&fs.Degraded, &fs.Sentinel, &fs.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, &fs)
	}
	return summaries, rows.Err()
}

// SearchSummaries runs a full-text query over every recorded summary and path.
// Each whitespace separated term must match; FTS5 operators in the input are
// treated as literal text.
func (s *SQLiteStorage) SearchSummaries(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, ErrEmptyQuery
	}
	limit = clampLimit(limit, DefaultSearchLimit)

	// 'rank' is the FTS5 BM25 column; lower values are better matches
	sqlQuery := `
		SELECT f.id, f.run_id, f.path, f.summary, f.chunks, f.degraded, f.sentinel, f.created_at,
		       snippet(summaries_fts, 1, '[', ']', '...', 12), rank
		FROM summaries_fts
		JOIN file_summaries f ON f.id = summaries_fts.rowid
		WHERE summaries_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := s.querier().QueryContext(ctx, sqlQuery, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchResult, 0)
	for rows.Next() {
		var r SearchResult
		fs := &r.Summary
		if err := rows.Scan(&fs.ID, &fs.RunID, &fs.Path, &fs.Summary, &fs.Chunks,
			&fs.Degraded, &fs.Sentinel, &fs.CreatedAt, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes every term of a user query as an FTS5 string
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func isConstraintError(err error, kind string) bool {
	msg := err.Error()
	return strings.Contains(msg, "constraint failed") && strings.Contains(msg, kind)
}
