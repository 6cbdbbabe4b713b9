package pipeline

import (
	"time"

	"github.com/dshills/repodoc/internal/report"
)

// Document assembles the report for a finished run. repository is the source
// as the user named it.
func (r *Result) Document(repository, generatedBy string) report.Document {
	stats := r.Stats
	return report.Document{
		Title:        report.DefaultTitle,
		Repository:   repository,
		ScannedPath:  r.Root,
		GeneratedBy:  generatedBy,
		Dependencies: r.Manifest,
		Summaries:    r.Summaries,
		Stats:        &stats,
		GeneratedAt:  time.Now(),
	}
}
