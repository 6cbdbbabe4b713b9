// Package types provides shared type definitions for repodoc.
//
// This package defines the domain types passed between the pipeline stages:
// discovered files, content chunks, and the ordered summary map that the
// report sinks consume.
//
// # Core Types
//
// FileRecord describes one eligible file found during discovery:
//
//	rec := types.FileRecord{
//	    Path:      "/tmp/checkout/src/app.py",
//	    RelPath:   "src/app.py",
//	    Size:      4096,
//	    Extension: ".py",
//	}
//
// Chunk is a contiguous, bounded slice of a file's text:
//
//	chunk := types.Chunk{Index: 0, Text: content[:8000]}
//
// SummaryMap maps root-relative paths to per-file summaries and preserves
// insertion order, which is the order files were processed in:
//
//	m := types.NewSummaryMap()
//	m.Set("src/app.py", summary)
//	for _, e := range m.Entries() {
//	    fmt.Println(e.Path, e.Summary)
//	}
//
// # Placeholder Text
//
// Two kinds of placeholder summaries exist. Sentinels are fixed strings used
// when no backend call was made (SentinelEmptyOrUnreadable, SentinelNoContent).
// Degraded results embed the failure cause of a backend call and always start
// with DegradedPrefix:
//
//	text := types.Degraded("ollama", err)
//	types.IsDegraded(text) // true
package types
