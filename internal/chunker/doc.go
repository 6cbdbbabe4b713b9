// Package chunker splits file content into fixed-size character blocks.
//
// Generative backends accept bounded inputs, so each file is cut into
// consecutive, non-overlapping slices before summarization. Sizes count
// characters (Unicode code points), not bytes, so a multi-byte rune is never
// split across two chunks.
//
// # Basic Usage
//
//	c := chunker.New(8000)
//	for _, chunk := range c.Split(content) {
//	    fmt.Printf("chunk %d: %d chars\n", chunk.Index, chunk.Len())
//	}
//
// # Guarantees
//
//   - Empty text yields no chunks
//   - Every chunk but the last holds exactly Size characters
//   - The last chunk holds between 1 and Size characters
//   - Concatenating chunk texts in index order reproduces the input
//
// Splitting is pure and deterministic: the same (text, size) pair always
// yields the same chunks.
package chunker
