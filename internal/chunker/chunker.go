package chunker

import (
	"unicode/utf8"

	"github.com/dshills/repodoc/pkg/types"
)

const (
	// DefaultChunkSize is the number of characters per chunk when none is configured
	DefaultChunkSize = 8000
)

// Chunker splits text into fixed-size character blocks
type Chunker struct {
	size int
}

// New creates a Chunker. Non-positive sizes fall back to DefaultChunkSize.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{size: size}
}

// Size returns the configured chunk size in characters
func (c *Chunker) Size() int {
	return c.size
}

// Split partitions text into consecutive chunks of Size characters
func (c *Chunker) Split(text string) []types.Chunk {
	if text == "" {
		return []types.Chunk{}
	}

	chunks := make([]types.Chunk, 0, c.Count(text))
	start := 0
	runes := 0
	for i := range text {
		if runes == c.size {
			chunks = append(chunks, types.Chunk{Index: len(chunks), Text: text[start:i]})
			start = i
			runes = 0
		}
		runes++
	}
	chunks = append(chunks, types.Chunk{Index: len(chunks), Text: text[start:]})

	return chunks
}

// Count returns how many chunks Split would produce for text
func (c *Chunker) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + c.size - 1) / c.size
}
