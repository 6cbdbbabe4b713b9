package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/repodoc/internal/summarizer"
	"github.com/dshills/repodoc/pkg/types"
)

// scriptedGenerator answers prompts in order and records them
type scriptedGenerator struct {
	prompts []string
	models  []string
	answer  func(n int, prompt string) summarizer.Result
	cancel  func()
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt, model string) summarizer.Result {
	g.prompts = append(g.prompts, prompt)
	g.models = append(g.models, model)
	n := len(g.prompts)
	if g.cancel != nil && n == 1 {
		g.cancel()
	}
	return g.answer(n, prompt)
}

func numbered(n int, prompt string) summarizer.Result {
	return summarizer.Result{Text: fmt.Sprintf("summary %d", n), Calls: 1}
}

func chunks(texts ...string) []types.Chunk {
	out := make([]types.Chunk, len(texts))
	for i, t := range texts {
		out[i] = types.Chunk{Index: i, Text: t}
	}
	return out
}

func TestSummarizeFile_TwoPhase(t *testing.T) {
	gen := &scriptedGenerator{answer: numbered}
	agg := New(gen, Options{})

	res := agg.SummarizeFile(context.Background(), chunks("first chunk", "second chunk", "third chunk"), "src/b.py", "gemma:2b")

	require.Len(t, gen.prompts, 4)
	assert.Equal(t, []string{"summary 1", "summary 2", "summary 3"}, res.ChunkSummaries)
	assert.Equal(t, "summary 4", res.Summary)
	assert.Equal(t, 4, res.Calls)
	assert.Equal(t, 4, res.BackendCalls)
	assert.Zero(t, res.Degraded)
	assert.NoError(t, res.Err)

	for i, text := range []string{"first chunk", "second chunk", "third chunk"} {
		assert.Contains(t, gen.prompts[i], "Code excerpt:\n"+text+"\n\n")
		assert.Contains(t, gen.prompts[i], "'src/b.py'")
	}

	combine := gen.prompts[3]
	assert.Contains(t, combine, "Combine these chunk-level summaries for file src/b.py:")
	assert.True(t, strings.HasSuffix(combine, "Chunk summaries:\n\nsummary 1\n\n---\n\nsummary 2\n\n---\n\nsummary 3"))
	for _, m := range gen.models {
		assert.Equal(t, "gemma:2b", m)
	}
}

func TestSummarizeFile_SingleChunk(t *testing.T) {
	t.Run("combine runs by default", func(t *testing.T) {
		gen := &scriptedGenerator{answer: numbered}
		res := New(gen, Options{}).SummarizeFile(context.Background(), chunks("only"), "a.go", "")
		assert.Len(t, gen.prompts, 2)
		assert.Equal(t, "summary 2", res.Summary)
	})

	t.Run("combine skipped when configured", func(t *testing.T) {
		gen := &scriptedGenerator{answer: numbered}
		res := New(gen, Options{SkipCombineForSingleChunk: true}).SummarizeFile(context.Background(), chunks("only"), "a.go", "")
		assert.Len(t, gen.prompts, 1)
		assert.Equal(t, "summary 1", res.Summary)
		assert.Equal(t, 1, res.Calls)
	})
}

func TestSummarizeFile_NoChunks(t *testing.T) {
	gen := &scriptedGenerator{answer: numbered}
	res := New(gen, Options{}).SummarizeFile(context.Background(), nil, "a.go", "")
	assert.Empty(t, gen.prompts)
	assert.Equal(t, types.SentinelNoContent, res.Summary)
	assert.Empty(t, res.ChunkSummaries)
}

func TestSummarizeFile_DegradedChunkIsolated(t *testing.T) {
	marker := types.Degraded("ollama", errors.New("timeout"))
	gen := &scriptedGenerator{answer: func(n int, prompt string) summarizer.Result {
		if n == 2 {
			return summarizer.Result{Text: marker, Degraded: true, Err: errors.New("timeout")}
		}
		return numbered(n, prompt)
	}}

	res := New(gen, Options{}).SummarizeFile(context.Background(), chunks("a", "b", "c"), "x.py", "")

	require.Len(t, gen.prompts, 4)
	assert.Equal(t, []string{"summary 1", marker, "summary 3"}, res.ChunkSummaries)
	assert.Contains(t, gen.prompts[3], marker)
	assert.Equal(t, "summary 4", res.Summary)
	assert.Equal(t, 1, res.Degraded)
}

func TestSummarizeFile_DegradedCombine(t *testing.T) {
	gen := &scriptedGenerator{answer: func(n int, prompt string) summarizer.Result {
		if strings.HasPrefix(prompt, "Combine") {
			return summarizer.Result{Text: types.Degraded("ollama", errors.New("down")), Degraded: true}
		}
		return numbered(n, prompt)
	}}

	res := New(gen, Options{}).SummarizeFile(context.Background(), chunks("a", "b"), "x.py", "")
	assert.True(t, types.IsDegraded(res.Summary))
	assert.Equal(t, 1, res.Degraded)
}

func TestSummarizeFile_CachedCallsExcludedFromBackendCount(t *testing.T) {
	gen := &scriptedGenerator{answer: func(n int, prompt string) summarizer.Result {
		return summarizer.Result{Text: "same", Cached: n == 2}
	}}
	res := New(gen, Options{}).SummarizeFile(context.Background(), chunks("a", "a"), "x.py", "")
	assert.Equal(t, 3, res.Calls)
	assert.Zero(t, res.BackendCalls)
}

func TestSummarizeFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &scriptedGenerator{answer: numbered, cancel: cancel}

	res := New(gen, Options{}).SummarizeFile(ctx, chunks("a", "b", "c"), "x.py", "")
	assert.Len(t, gen.prompts, 1)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.True(t, types.IsDegraded(res.Summary))
}

func TestPrompts(t *testing.T) {
	p := ChunkPrompt("pkg/a.go", "func A() {}")
	assert.True(t, strings.HasPrefix(p, "You are an expert software engineer and technical writer.\n"))
	assert.Contains(t, p, "5) Edge cases or considerations.")
	assert.True(t, strings.HasSuffix(p, "Code excerpt:\nfunc A() {}\n\n"))

	c := CombinePrompt("pkg/a.go", []string{"one"})
	assert.Equal(t, "Combine these chunk-level summaries for file pkg/a.go:\n1) File summary\n2) Key components\n3) Actionable notes\n\nChunk summaries:\n\none", c)
}
