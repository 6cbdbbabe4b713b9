// Package pipeline drives a documentation run over a local source tree.
//
// # Basic Usage
//
//	client := summarizer.NewClient(provider, cfg.ClientConfig())
//	drv := pipeline.New(cfg, client,
//	    pipeline.WithFileStart(func(i, n int, path string) {
//	        fmt.Printf("[%d/%d] Summarizing %s\n", i, n, path)
//	    }),
//	)
//
//	res, err := drv.Run(ctx, "/path/to/checkout")
//	if errors.Is(err, pipeline.ErrNoFiles) {
//	    // nothing to document
//	}
//	fmt.Printf("%d files in %v\n", res.Summaries.Len(), res.Stats.Duration)
//
// # Run Sequence
//
//  1. Discover eligible files once, smallest first
//  2. For each file: read, chunk, summarize every chunk, combine
//  3. Record the file summary under its root-relative path
//  4. Detect top-level manifests for the report header
//
// Files that are empty, whitespace-only, unreadable or not valid UTF-8 get
// types.SentinelEmptyOrUnreadable without any backend call. Backend failures
// are recorded as degraded summaries; they never stop the run. Only an empty
// discovery result (ErrNoFiles), an unusable root or context cancellation
// end a run with an error.
//
// # Concurrency
//
// Files are processed sequentially in discovery order. A Driver is not safe
// for concurrent Run calls; callers that accept requests concurrently guard
// runs with a RunLock.
//
// # History
//
// WithRecorder attaches a storage.Storage. The driver then opens a run row
// before discovery, adds one row per file summary and closes the run with its
// final status and counters. Recording failures are logged and otherwise
// ignored.
package pipeline
