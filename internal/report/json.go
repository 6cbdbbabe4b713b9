package report

import (
	"encoding/json"
	"time"

	"github.com/dshills/repodoc/pkg/types"
)

// JSONRenderer renders a document as indented JSON
type JSONRenderer struct{}

type jsonDocument struct {
	Title        string     `json:"title"`
	Repository   string     `json:"repository"`
	ScannedPath  string     `json:"scanned_path"`
	GeneratedBy  string     `json:"generated_by"`
	GeneratedAt  *time.Time `json:"generated_at,omitempty"`
	Dependencies string     `json:"dependencies"`
	Files        []jsonFile `json:"files"`
	Stats        *jsonStats `json:"stats,omitempty"`
}

type jsonFile struct {
	Path     string `json:"path"`
	Summary  string `json:"summary"`
	Degraded bool   `json:"degraded,omitempty"`
	Sentinel bool   `json:"sentinel,omitempty"`
}

type jsonStats struct {
	FilesDiscovered int   `json:"files_discovered"`
	FilesSummarized int   `json:"files_summarized"`
	FilesSentinel   int   `json:"files_sentinel"`
	ChunksProcessed int   `json:"chunks_processed"`
	SummaryCalls    int   `json:"summary_calls"`
	BackendCalls    int   `json:"backend_calls"`
	DegradedCalls   int   `json:"degraded_calls"`
	DurationMs      int64 `json:"duration_ms"`
}

func (JSONRenderer) ContentType() string {
	return "application/json"
}

func (JSONRenderer) Render(doc Document) ([]byte, error) {
	out := jsonDocument{
		Title:        doc.title(),
		Repository:   doc.Repository,
		ScannedPath:  doc.ScannedPath,
		GeneratedBy:  doc.GeneratedBy,
		Dependencies: doc.Dependencies,
		Files:        []jsonFile{},
	}
	if !doc.GeneratedAt.IsZero() {
		at := doc.GeneratedAt.UTC()
		out.GeneratedAt = &at
	}
	for _, entry := range doc.Summaries.Entries() {
		out.Files = append(out.Files, jsonFile{
			Path:     entry.Path,
			Summary:  entry.Summary,
			Degraded: types.IsDegraded(entry.Summary),
			Sentinel: types.IsSentinel(entry.Summary),
		})
	}
	if s := doc.Stats; s != nil {
		out.Stats = &jsonStats{
			FilesDiscovered: s.FilesDiscovered,
			FilesSummarized: s.FilesSummarized,
			FilesSentinel:   s.FilesSentinel,
			ChunksProcessed: s.ChunksProcessed,
			SummaryCalls:    s.SummaryCalls,
			BackendCalls:    s.BackendCalls,
			DegradedCalls:   s.DegradedCalls,
			DurationMs:      s.Duration.Milliseconds(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
