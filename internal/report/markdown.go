package report

import (
	"bytes"
	"fmt"
	"strings"
)

// PageBreak separates file sections when the Markdown is printed or converted
const PageBreak = `<div style="page-break-after: always;"></div>`

// MarkdownRenderer renders a document as Markdown with one second-level
// heading per file
type MarkdownRenderer struct{}

func (MarkdownRenderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (MarkdownRenderer) Render(doc Document) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", doc.title())
	fmt.Fprintf(&b, "Repository: %s\n\n", doc.Repository)
	fmt.Fprintf(&b, "Scanned path: %s\n\n", doc.ScannedPath)
	fmt.Fprintf(&b, "Generated by: %s\n\n", doc.GeneratedBy)
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated at: %s\n\n", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}

	fmt.Fprintf(&b, "## %s\n\n", DependenciesHeading)
	writeBlock(&b, doc.dependencies())

	if s := doc.Stats; s != nil {
		b.WriteString("## Run Statistics\n\n")
		fmt.Fprintf(&b, "- Files discovered: %d\n", s.FilesDiscovered)
		fmt.Fprintf(&b, "- Files summarized: %d\n", s.FilesSummarized)
		fmt.Fprintf(&b, "- Empty or unreadable files: %d\n", s.FilesSentinel)
		fmt.Fprintf(&b, "- Chunks processed: %d\n", s.ChunksProcessed)
		fmt.Fprintf(&b, "- Degraded calls: %d\n", s.DegradedCalls)
		fmt.Fprintf(&b, "- Duration: %s\n\n", s.Duration.Round(1e6))
	}

	fmt.Fprintf(&b, "# %s\n\n", SummariesHeading)
	for i, entry := range doc.Summaries.Entries() {
		if i > 0 {
			b.WriteString(PageBreak + "\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", entry.Path)
		writeBlock(&b, entry.Summary)
	}

	return b.Bytes(), nil
}

// writeBlock writes text as a paragraph followed by a blank line
func writeBlock(b *bytes.Buffer, text string) {
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n")
}
