package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/repodoc/internal/pipeline"
	"github.com/dshills/repodoc/internal/probe"
	"github.com/dshills/repodoc/internal/report"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/internal/summarizer"
	"github.com/dshills/repodoc/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeRunInProgress   = -32002 // Another documentation run is already running
	ErrorCodeRunNotFound     = -32003 // No recorded run with that id
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
	ErrorCodeNoFiles         = -32005 // The tree holds no code files
	ErrorCodeCapabilityUnmet = -32006 // Backend or output not usable
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// handleGenerateDocs handles the generate_docs tool invocation
func (s *Server) handleGenerateDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	cfg := s.cfg
	output := getStringDefault(args, "output", cfg.Output)
	cfg.Output = output
	cfg.Model = getStringDefault(args, "model", cfg.Model)
	cfg.ChunkSize = getIntDefault(args, "chunk_size", cfg.ChunkSize)
	if err := cfg.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	sink, err := report.ForOutput(output, cfg.ObjectStore())
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid output", map[string]interface{}{
			"param":  "output",
			"reason": err.Error(),
		})
	}

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeRunInProgress, "a documentation run is already in progress", nil)
	}
	defer s.lock.Release()

	provider, err := s.newProvider(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, newMCPError(ErrorCodeCapabilityUnmet, "summarization backend unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	client := summarizer.NewClient(provider, cfg.ClientConfig())
	defer func() { _ = client.Close() }()

	drv := pipeline.New(cfg, client,
		pipeline.WithRecorder(s.storage, pipeline.RunInfo{Source: path, Output: output}),
		pipeline.WithLogger(s.logger),
	)
	res, err := drv.Run(ctx, path)
	if errors.Is(err, pipeline.ErrNoFiles) {
		return nil, newMCPError(ErrorCodeNoFiles, "no code files found", map[string]interface{}{
			"path":       path,
			"extensions": cfg.Extensions,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "documentation run failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	doc := res.Document(path, report.GeneratedByLine(provider.Provider(), provider.Model()))
	location, err := sink.Write(ctx, doc)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to write report", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":           res.RunID,
		"output":           location,
		"files_discovered": res.Stats.FilesDiscovered,
		"files_summarized": res.Stats.FilesSummarized,
		"files_sentinel":   res.Stats.FilesSentinel,
		"chunks_processed": res.Stats.ChunksProcessed,
		"degraded_calls":   res.Stats.DegradedCalls,
		"backend_calls":    res.Stats.BackendCalls,
		"duration_ms":      res.Stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListRuns handles the list_runs tool invocation
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", storage.DefaultListLimit)
	if limit < 1 || limit > storage.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 1000", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	runs, err := s.storage.ListRuns(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]interface{}, 0, len(runs))
	for _, run := range runs {
		items = append(items, formatRun(run))
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"runs":  items,
		"count": len(items),
	})), nil
}

// handleGetRunSummaries handles the get_run_summaries tool invocation
func (s *Server) handleGetRunSummaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	runID := int64(getIntDefault(args, "run_id", 0))
	if runID <= 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "run_id parameter is required", map[string]interface{}{
			"param":  "run_id",
			"reason": "missing or not positive",
		})
	}

	run, err := s.storage.GetRun(ctx, runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get run", map[string]interface{}{
			"error": err.Error(),
		})
	}

	summaries, err := s.storage.ListFileSummaries(ctx, runID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list summaries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	files := make([]interface{}, 0, len(summaries))
	for _, fs := range summaries {
		files = append(files, formatSummary(fs))
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"run":       formatRun(run),
		"summaries": files,
	})), nil
}

// handleSearchSummaries handles the search_summaries tool invocation
func (s *Server) handleSearchSummaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", storage.DefaultSearchLimit)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.storage.SearchSummaries(ctx, query, limit)
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query has no searchable terms", map[string]interface{}{
			"param": "query",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]interface{}, 0, len(results))
	for _, r := range results {
		item := formatSummary(&r.Summary)
		item["snippet"] = r.Snippet
		item["rank"] = r.Rank
		items = append(items, item)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"results": items,
		"count":   len(items),
	})), nil
}

// handleProbe handles the probe tool invocation
func (s *Server) handleProbe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	cfg := s.cfg
	cfg.Output = getStringDefault(args, "output", cfg.Output)
	source := getStringDefault(args, "path", "")

	rep := probe.Probe(ctx, cfg, source)
	caps := make([]interface{}, 0, len(rep.Capabilities))
	for _, c := range rep.Capabilities {
		caps = append(caps, map[string]interface{}{
			"name":      c.Name,
			"available": c.Available,
			"detail":    c.Detail,
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ready":        rep.OK(),
		"capabilities": caps,
	})), nil
}

// Helper functions

func formatRun(run *storage.Run) map[string]interface{} {
	out := map[string]interface{}{
		"id":               run.ID,
		"source":           run.Source,
		"root":             run.Root,
		"provider":         run.Provider,
		"model":            run.Model,
		"output":           run.Output,
		"status":           string(run.Status),
		"files_discovered": run.FilesDiscovered,
		"files_summarized": run.FilesSummarized,
		"files_sentinel":   run.FilesSentinel,
		"chunks_processed": run.ChunksProcessed,
		"degraded_calls":   run.DegradedCalls,
		"backend_calls":    run.BackendCalls,
		"started_at":       run.StartedAt.Format(timeFormat),
	}
	if run.Error != "" {
		out["error"] = run.Error
	}
	if run.FinishedAt != nil {
		out["finished_at"] = run.FinishedAt.Format(timeFormat)
		out["duration_ms"] = run.Duration().Milliseconds()
	}
	return out
}

func formatSummary(fs *storage.FileSummary) map[string]interface{} {
	return map[string]interface{}{
		"run_id":   fs.RunID,
		"path":     fs.Path,
		"summary":  fs.Summary,
		"chunks":   fs.Chunks,
		"degraded": fs.Degraded || types.IsDegraded(fs.Summary),
		"sentinel": fs.Sentinel,
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	if val, ok := args[key].(int64); ok {
		return int(val)
	}
	return defaultValue
}

// getStringDefault extracts a non-empty string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
