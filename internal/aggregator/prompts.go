package aggregator

import (
	"fmt"
	"strings"
)

// ChunkSeparator joins chunk summaries inside the combine prompt
const ChunkSeparator = "\n\n---\n\n"

// ChunkPrompt builds the per-chunk developer summary prompt
func ChunkPrompt(path, chunk string) string {
	var b strings.Builder
	b.WriteString("You are an expert software engineer and technical writer.\n")
	fmt.Fprintf(&b, "Analyze the following code excerpt from the file '%s' and produce a clear, developer-friendly summary.\n\n", path)
	b.WriteString("For each excerpt, provide the following:\n")
	b.WriteString("1) One-sentence purpose.\n")
	b.WriteString("2) Key components.\n")
	b.WriteString("3) Functionality description.\n")
	b.WriteString("4) Dependencies.\n")
	b.WriteString("5) Edge cases or considerations.\n\n")
	fmt.Fprintf(&b, "Code excerpt:\n%s\n\n", chunk)
	return b.String()
}

// CombinePrompt builds the prompt merging chunk summaries into a file summary.
// Summaries are embedded in the order given.
func CombinePrompt(path string, summaries []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combine these chunk-level summaries for file %s:\n", path)
	b.WriteString("1) File summary\n2) Key components\n3) Actionable notes\n\n")
	b.WriteString("Chunk summaries:\n\n")
	b.WriteString(strings.Join(summaries, ChunkSeparator))
	return b.String()
}
