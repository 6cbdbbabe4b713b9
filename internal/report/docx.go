package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

// DocxRenderer renders a document as a Word file with a page break between
// file sections
type DocxRenderer struct{}

func (DocxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DocxRenderer) Render(doc Document) ([]byte, error) {
	d, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("create docx: %w", err)
	}

	if _, err := d.AddHeading(doc.title(), 0); err != nil {
		return nil, fmt.Errorf("docx heading: %w", err)
	}
	labels := [][2]string{
		{"Repository: ", doc.Repository},
		{"Scanned path: ", doc.ScannedPath},
		{"Generated by: ", doc.GeneratedBy},
	}
	if !doc.GeneratedAt.IsZero() {
		labels = append(labels, [2]string{"Generated at: ", doc.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")})
	}
	for _, l := range labels {
		p := d.AddParagraph("")
		p.AddText(l[0]).Bold(true)
		p.AddText(l[1])
	}

	if _, err := d.AddHeading(DependenciesHeading, 1); err != nil {
		return nil, fmt.Errorf("docx heading: %w", err)
	}
	for _, line := range paragraphs(doc.dependencies()) {
		d.AddParagraph(line)
	}

	if s := doc.Stats; s != nil {
		if _, err := d.AddHeading("Run Statistics", 1); err != nil {
			return nil, fmt.Errorf("docx heading: %w", err)
		}
		d.AddParagraph(fmt.Sprintf("Files discovered: %d", s.FilesDiscovered))
		d.AddParagraph(fmt.Sprintf("Files summarized: %d", s.FilesSummarized))
		d.AddParagraph(fmt.Sprintf("Empty or unreadable files: %d", s.FilesSentinel))
		d.AddParagraph(fmt.Sprintf("Chunks processed: %d", s.ChunksProcessed))
		d.AddParagraph(fmt.Sprintf("Degraded calls: %d", s.DegradedCalls))
		d.AddParagraph(fmt.Sprintf("Duration: %s", s.Duration.Round(1e6)))
	}

	if _, err := d.AddHeading(SummariesHeading, 1); err != nil {
		return nil, fmt.Errorf("docx heading: %w", err)
	}
	for i, entry := range doc.Summaries.Entries() {
		if i > 0 {
			d.AddPageBreak()
		}
		if _, err := d.AddHeading(entry.Path, 2); err != nil {
			return nil, fmt.Errorf("docx heading: %w", err)
		}
		for _, line := range paragraphs(entry.Summary) {
			d.AddParagraph(line)
		}
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs splits text into its non-blank lines
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, " \t\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
