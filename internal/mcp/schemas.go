package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// generateDocsTool returns the tool definition for generate_docs
func generateDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_docs",
		Description: "Summarize every code file under a local directory and write a documentation report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the source tree to document",
				},
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Report location: a .md, .docx or .json file path, or s3://bucket/key",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Model name passed to the summarization backend",
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum characters per chunk",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// listRunsTool returns the tool definition for list_runs
func listRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded documentation runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (1-1000)",
					"default":     20,
					"minimum":     1,
					"maximum":     1000,
				},
			},
		},
	}
}

// getRunSummariesTool returns the tool definition for get_run_summaries
func getRunSummariesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_run_summaries",
		Description: "Return a recorded run and the per-file summaries it produced",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "integer",
					"description": "Identifier of the run as returned by list_runs or generate_docs",
				},
			},
			Required: []string{"run_id"},
		},
	}
}

// searchSummariesTool returns the tool definition for search_summaries
func searchSummariesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_summaries",
		Description: "Full-text search over recorded file summaries of all runs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// probeTool returns the tool definition for probe
func probeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "probe",
		Description: "Check that the summarization backend, output location and history database are usable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Optional source directory or git URL to check as well",
				},
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Optional report location to check instead of the configured one",
				},
			},
		},
	}
}
