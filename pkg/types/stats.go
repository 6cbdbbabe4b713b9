package types

import "time"

// RunStats counts what a documentation run did
type RunStats struct {
	FilesDiscovered int
	FilesSummarized int // Files that went through the aggregator
	FilesSentinel   int // Files recorded with a sentinel, no backend call
	ChunksProcessed int
	SummaryCalls    int // Generate invocations, cache hits included
	BackendCalls    int // Backend attempts, retries included
	DegradedCalls   int
	Duration        time.Duration
}
