// Package report renders the summaries of a documentation run into the final
// document and delivers it to a sink: a Markdown, Word or JSON file on disk,
// or an object in an S3-compatible bucket.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/repodoc/pkg/types"
)

const (
	DefaultTitle        = "Repository Documentation"
	DependenciesHeading = "Dependencies & Top-level Files"
	NoDependencies      = "No dependency files were found."
	SummariesHeading    = "File Summaries"
)

var (
	// ErrEmptyOutput is returned when no output location was given
	ErrEmptyOutput = errors.New("output path cannot be empty")
	// ErrInvalidObjectURL is returned for malformed s3:// outputs
	ErrInvalidObjectURL = errors.New("invalid object store URL")
)

// Document is everything the final report contains
type Document struct {
	Title        string
	Repository   string // Source as given by the user
	ScannedPath  string // Local root that was traversed
	GeneratedBy  string
	Dependencies string // Top-level manifest excerpts, may be empty
	Summaries    *types.SummaryMap
	Stats        *types.RunStats // Optional
	GeneratedAt  time.Time
}

// Sink delivers a rendered document and returns its final location
type Sink interface {
	Write(ctx context.Context, doc Document) (string, error)
}

// Renderer turns a document into bytes
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
}

// GeneratedByLine describes the generator for the document header
func GeneratedByLine(provider, model string) string {
	switch {
	case provider == "" && model == "":
		return "repodoc"
	case model == "":
		return fmt.Sprintf("repodoc (%s backend)", provider)
	default:
		return fmt.Sprintf("repodoc (%s backend, model %s)", provider, model)
	}
}

// ForOutput picks the sink for output: s3://bucket/key goes to the object
// store, a .json extension selects JSON and anything else Markdown.
func ForOutput(output string, s3 S3Config) (Sink, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, ErrEmptyOutput
	}
	renderer := RendererFor(output)
	if strings.HasPrefix(output, "s3://") {
		bucket, key, err := ParseObjectURL(output)
		if err != nil {
			return nil, err
		}
		s3.Bucket = bucket
		return NewObjectStoreSink(s3, key, renderer)
	}
	return &FileSink{Path: output, Renderer: renderer}, nil
}

// RendererFor returns the renderer matching the extension of output
func RendererFor(output string) Renderer {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json":
		return JSONRenderer{}
	case ".docx":
		return DocxRenderer{}
	default:
		return MarkdownRenderer{}
	}
}

// ParseObjectURL splits s3://bucket/key into its parts
func ParseObjectURL(url string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(url, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidObjectURL, url)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidObjectURL, url)
	}
	return bucket, key, nil
}

func (d Document) title() string {
	if d.Title == "" {
		return DefaultTitle
	}
	return d.Title
}

func (d Document) dependencies() string {
	if strings.TrimSpace(d.Dependencies) == "" {
		return NoDependencies
	}
	return d.Dependencies
}
