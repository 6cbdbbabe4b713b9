// Package summarizer turns prompts into summaries using a language model backend.
//
// A Provider performs one raw completion against a backend. The Client wraps a
// Provider with the policies every call in a documentation run shares: an
// independent timeout per call, retry with exponential backoff for transport
// failures, an LRU cache of successful results and a fixed pacing gap between
// consecutive calls.
//
// # Degraded Results
//
// Client.Generate never returns an error. A failed call produces a Result whose
// Text is a degraded marker embedding the provider and the cause:
//
//	res := client.Generate(ctx, prompt, "gemma:2b")
//	if res.Degraded {
//	    log.Printf("chunk failed: %v", res.Err)
//	}
//	fmt.Println(res.Text) // "[summarization failed: ollama: ...]" on failure
//
// Callers record the text either way. One failing chunk never aborts a file and
// one failing file never aborts a run.
//
// # Providers
//
//   - ollama: POST {endpoint}/api/generate with streaming enabled (default)
//   - gemini: Google Gemini through google.golang.org/genai, needs GEMINI_API_KEY
//   - local:  offline extractive summaries, no network (dry runs and tests)
//
// Provider selection from the environment:
//
//  1. If REPODOC_PROVIDER is set, use it
//  2. Else if GEMINI_API_KEY is set and REPODOC_ENDPOINT is not, use gemini
//  3. Else use ollama
//
// # Streaming
//
// Ollama streams a sequence of JSON objects. The OllamaProvider decodes them one
// at a time, concatenating every "response" fragment until an object reports
// done=true, an object carries an "error" key, the body ends, or MaxFragments
// objects were consumed. A single non-streamed JSON object is handled the same
// way.
//
// # Pacing
//
// The Pacer enforces a fixed minimum gap between the end of one backend call and
// the start of the next. Cached results do not touch the backend and are not
// paced.
package summarizer
