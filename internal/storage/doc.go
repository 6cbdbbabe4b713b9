// Package storage provides SQLite-based persistence for the history of
// documentation runs.
//
// Recording is advisory: the pipeline writes one row per run and one row per
// file summary so that past results can be listed and searched later. History
// is never read back to resume or skip work.
//
// # Database Schema
//
// Tables:
//   - runs: one row per documentation run (source, status, counters)
//   - file_summaries: the summary recorded for each file of a run
//   - summaries_fts: FTS5 index over file paths and summary text
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("repodoc.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	run := &storage.Run{Source: "https://github.com/org/repo.git", Model: "gemma:2b"}
//	if err := db.CreateRun(ctx, run); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = db.AddFileSummary(ctx, &storage.FileSummary{
//	    RunID:   run.ID,
//	    Path:    "src/main.py",
//	    Summary: "Entry point that parses arguments.",
//	    Chunks:  1,
//	})
//
//	run.Status = storage.RunCompleted
//	err = db.FinishRun(ctx, run)
//
// # Full-Text Search
//
// SearchSummaries matches every term of the query against paths and summary
// text, ranked by BM25:
//
//	results, err := db.SearchSummaries(ctx, "config parser", 10)
//	for _, r := range results {
//	    fmt.Printf("run %d %s: %s\n", r.Summary.RunID, r.Summary.Path, r.Snippet)
//	}
//
// # Build Modes
//
// The driver is selected at build time:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo,fts5" ./...   // mattn/go-sqlite3
//	CGO_ENABLED=0 go build -tags "purego" ./...            // modernc.org/sqlite
//
// Both builds share the same schema and migrations.
//
// # Migrations
//
// Schema changes are listed in AllMigrations and applied in semantic version
// order on open. RollbackMigration reverts the most recent one.
package storage
