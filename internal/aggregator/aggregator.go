// Package aggregator produces one summary per file in two phases: every chunk
// is summarized on its own, then the chunk summaries are combined into the
// file summary with one more call.
package aggregator

import (
	"context"

	"github.com/dshills/repodoc/internal/summarizer"
	"github.com/dshills/repodoc/pkg/types"
)

// Generator produces a completion for a prompt; failures come back as
// degraded results rather than errors
type Generator interface {
	Generate(ctx context.Context, prompt, model string) summarizer.Result
}

// Options tunes the aggregation phases
type Options struct {
	// SkipCombineForSingleChunk uses the only chunk summary as the file
	// summary instead of running the combine phase
	SkipCombineForSingleChunk bool
}

// FileResult is the outcome of summarizing one file
type FileResult struct {
	Summary        string
	ChunkSummaries []string // In chunk order, degraded markers included
	Degraded       int      // Degraded results among all calls
	Calls          int      // Generate invocations
	BackendCalls   int      // Backend attempts, cache hits excluded
	Err            error    // Set only when the context ended the file early
}

// Aggregator runs the two-phase summarization of a file
type Aggregator struct {
	gen  Generator
	opts Options
}

// New creates an aggregator
func New(gen Generator, opts Options) *Aggregator {
	return &Aggregator{gen: gen, opts: opts}
}

// SummarizeFile summarizes chunks of the file at path. A degraded chunk does
// not stop the remaining chunks; its marker flows into the combine prompt.
func (a *Aggregator) SummarizeFile(ctx context.Context, chunks []types.Chunk, path, model string) FileResult {
	var res FileResult
	res.ChunkSummaries = make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			res.Err = err
			res.Summary = types.Degraded("", err)
			return res
		}
		out := a.gen.Generate(ctx, ChunkPrompt(path, chunk.Text), model)
		res.record(out)
		res.ChunkSummaries = append(res.ChunkSummaries, out.Text)
	}

	switch {
	case len(res.ChunkSummaries) == 0:
		res.Summary = types.SentinelNoContent
		return res
	case len(res.ChunkSummaries) == 1 && a.opts.SkipCombineForSingleChunk:
		res.Summary = res.ChunkSummaries[0]
		return res
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		res.Summary = types.Degraded("", err)
		return res
	}
	out := a.gen.Generate(ctx, CombinePrompt(path, res.ChunkSummaries), model)
	res.record(out)
	res.Summary = out.Text
	return res
}

func (r *FileResult) record(out summarizer.Result) {
	r.Calls++
	r.BackendCalls += out.Calls
	if out.Degraded {
		r.Degraded++
	}
}
