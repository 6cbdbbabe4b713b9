// Package mcp implements the Model Context Protocol (MCP) server for repodoc.
//
// The MCP server exposes five tools to AI coding assistants:
//   - generate_docs: Document a local source tree and write the report
//   - list_runs: List recorded documentation runs
//   - get_run_summaries: Fetch the per-file summaries of one run
//   - search_summaries: Full-text search over all recorded summaries
//   - probe: Check backend, output and history database readiness
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	repodoc serve
//
// # Tool: generate_docs
//
//	Request:
//	{
//	  "name": "generate_docs",
//	  "arguments": {
//	    "path": "/path/to/checkout",
//	    "output": "/tmp/documentation.md",
//	    "model": "gemma:2b",
//	    "chunk_size": 8000
//	  }
//	}
//
//	Response:
//	{
//	  "run_id": 12,
//	  "output": "/tmp/documentation.md",
//	  "files_discovered": 41,
//	  "files_summarized": 39,
//	  "files_sentinel": 2,
//	  "chunks_processed": 57,
//	  "degraded_calls": 0,
//	  "backend_calls": 96,
//	  "duration_ms": 412873
//	}
//
// The tree is summarized in place; no copy is made. Only one run executes at
// a time. A second generate_docs call while one is running fails immediately
// with -32002 instead of queueing.
//
// # Tool: search_summaries
//
//	Request:
//	{
//	  "name": "search_summaries",
//	  "arguments": {"query": "retry backoff", "limit": 5}
//	}
//
// Results carry the run id, file path, a snippet with [brackets] around the
// matched terms and the BM25 rank (lower is better).
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "repodoc": {
//	      "command": "/usr/local/bin/repodoc",
//	      "args": ["serve"],
//	      "env": {
//	        "REPODOC_PROVIDER": "ollama",
//	        "REPODOC_MODEL": "gemma:2b"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32002: Documentation run in progress
//   - -32003: Run not found
//   - -32004: Empty query
//   - -32005: No code files found
//   - -32006: Summarization backend unavailable
//
// # Logging
//
// The MCP server logs to stderr; stdout is reserved for the protocol.
package mcp
