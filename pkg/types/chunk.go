package types

import "unicode/utf8"

// Chunk is one contiguous slice of a file's text
type Chunk struct {
	Index int    // 0-based position within the file
	Text  string // Never empty for chunks produced by the chunker
}

// Len returns the chunk length in characters
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Validate checks if the chunk is usable
func (c Chunk) Validate() error {
	if c.Index < 0 {
		return ErrInvalidIndex
	}
	if c.Text == "" {
		return ErrEmptyChunk
	}
	return nil
}
