package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func createRun(t *testing.T, s *SQLiteStorage, source string) *Run {
	t.Helper()
	run := &Run{Source: source, Provider: "ollama", Model: "gemma:2b"}
	require.NoError(t, s.CreateRun(context.Background(), run))
	return run
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)

	version, err := SchemaVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version.String())
}

func TestNewSQLiteStorage_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	run := &Run{Source: "repo"}
	require.NoError(t, first.CreateRun(context.Background(), run))
	require.NoError(t, first.Close())

	// Reopening applies no migration twice and keeps data
	second, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "repo", got.Source)
}

func TestCreateAndGetRun(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	run := createRun(t, s, "https://github.com/example/repo.git")
	assert.Greater(t, run.ID, int64(0))
	assert.Equal(t, RunRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Source, got.Source)
	assert.Equal(t, "ollama", got.Provider)
	assert.Equal(t, "gemma:2b", got.Model)
	assert.Equal(t, RunRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.Equal(t, time.Duration(0), got.Duration())

	_, err = s.GetRun(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinishRun(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	run := createRun(t, s, "repo")
	run.Root = "/tmp/Code_Repository"
	run.Output = "documentation.md"
	run.Status = RunCompleted
	run.FilesDiscovered = 3
	run.FilesSummarized = 2
	run.FilesSentinel = 1
	run.ChunksProcessed = 4
	run.DegradedCalls = 1
	run.BackendCalls = 6
	require.NoError(t, s.FinishRun(ctx, run))
	require.NotNil(t, run.FinishedAt)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, got.Status)
	assert.Equal(t, "/tmp/Code_Repository", got.Root)
	assert.Equal(t, 3, got.FilesDiscovered)
	assert.Equal(t, 2, got.FilesSummarized)
	assert.Equal(t, 1, got.FilesSentinel)
	assert.Equal(t, 4, got.ChunksProcessed)
	assert.Equal(t, 1, got.DegradedCalls)
	assert.Equal(t, 6, got.BackendCalls)
	require.NotNil(t, got.FinishedAt)
	assert.GreaterOrEqual(t, got.Duration(), time.Duration(0))

	missing := &Run{ID: 12345, Status: RunFailed}
	assert.ErrorIs(t, s.FinishRun(ctx, missing), ErrNotFound)
}

func TestListRuns(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, src := range []string{"first", "second", "third"} {
		run := &Run{Source: src, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.CreateRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Source)
	assert.Equal(t, "first", runs[2].Source)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestFileSummaries(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	run := createRun(t, s, "repo")

	for _, fs := range []*FileSummary{
		{RunID: run.ID, Path: "src/a.py", Summary: "Prints a greeting.", Chunks: 1},
		{RunID: run.ID, Path: "src/b.py", Summary: "Parses the config file.", Chunks: 2},
		{RunID: run.ID, Path: "empty.py", Summary: "[empty or binary file]", Sentinel: true},
	} {
		require.NoError(t, s.AddFileSummary(ctx, fs))
		assert.Greater(t, fs.ID, int64(0))
	}

	got, err := s.ListFileSummaries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "src/a.py", got[0].Path)
	assert.Equal(t, 2, got[1].Chunks)
	assert.True(t, got[2].Sentinel)
	assert.False(t, got[0].Degraded)

	// Duplicate path in the same run
	err = s.AddFileSummary(ctx, &FileSummary{RunID: run.ID, Path: "src/a.py", Summary: "again"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Unknown run
	err = s.AddFileSummary(ctx, &FileSummary{RunID: 999, Path: "x.py", Summary: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	other, err := s.ListFileSummaries(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSearchSummaries(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	run1 := createRun(t, s, "repo1")
	run2 := createRun(t, s, "repo2")

	require.NoError(t, s.AddFileSummary(ctx, &FileSummary{RunID: run1.ID, Path: "config/loader.go", Summary: "Loads YAML configuration from disk."}))
	require.NoError(t, s.AddFileSummary(ctx, &FileSummary{RunID: run1.ID, Path: "server.go", Summary: "Starts the HTTP server."}))
	require.NoError(t, s.AddFileSummary(ctx, &FileSummary{RunID: run2.ID, Path: "settings.py", Summary: "Reads configuration values from the environment."}))

	t.Run("matches summary text across runs", func(t *testing.T) {
		results, err := s.SearchSummaries(ctx, "configuration", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		runs := []int64{results[0].Summary.RunID, results[1].Summary.RunID}
		assert.ElementsMatch(t, []int64{run1.ID, run2.ID}, runs)
		for _, r := range results {
			assert.Contains(t, r.Snippet, "[configuration]")
		}
	})

	t.Run("all terms must match", func(t *testing.T) {
		results, err := s.SearchSummaries(ctx, "configuration YAML", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "config/loader.go", results[0].Summary.Path)
	})

	t.Run("matches path", func(t *testing.T) {
		results, err := s.SearchSummaries(ctx, "server", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "server.go", results[0].Summary.Path)
	})

	t.Run("operators are literal", func(t *testing.T) {
		results, err := s.SearchSummaries(ctx, "HTTP OR settings", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := s.SearchSummaries(ctx, "configuration", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := s.SearchSummaries(ctx, "   ", 10)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}

func TestMigrationsRollback(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, RollbackMigration(ctx, s.db))
	version, err := SchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version.String())

	// Reapplying restores the latest schema
	require.NoError(t, ApplyMigrations(ctx, s.db))
	version, err = SchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version.String())

	run := &Run{Source: "after-migrate", Status: RunCompleted, BackendCalls: 2}
	require.NoError(t, s.CreateRun(ctx, run))
	require.NoError(t, s.FinishRun(ctx, run))
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"config" "parser"`, ftsQuery(" config  parser "))
	assert.Equal(t, `"a""b"`, ftsQuery(`a"b`))
	assert.Empty(t, ftsQuery(""))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20))
	assert.Equal(t, 5, clampLimit(5, 20))
	assert.Equal(t, MaxLimit, clampLimit(MaxLimit+1, 20))
}
