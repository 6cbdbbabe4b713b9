package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/internal/summarizer"
)

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ServerTestSuite drives the tool handlers against an in-memory history
// database and the offline local provider
type ServerTestSuite struct {
	suite.Suite
	server *Server
	tree   string
	outDir string
	ctx    context.Context
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	s.Require().NoError(err)

	cfg := config.Default()
	cfg.Provider = summarizer.ProviderLocal
	cfg.PacingDelay = 0
	s.outDir = s.T().TempDir()
	cfg.Output = filepath.Join(s.outDir, "documentation.md")

	s.server = newServer(cfg, store)
	s.server.logger = log.New(io.Discard, "", 0)

	s.tree = s.T().TempDir()
	s.writeFile("main.go", "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n")
	s.writeFile("util/strings.go", "package util\n\nfunc Reverse(s string) string { return s }\n")
	s.writeFile("empty.go", "")
}

func (s *ServerTestSuite) TearDownTest() {
	_ = s.server.Close()
}

func (s *ServerTestSuite) writeFile(rel, content string) {
	path := filepath.Join(s.tree, filepath.FromSlash(rel))
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0755))
	s.Require().NoError(os.WriteFile(path, []byte(content), 0644))
}

func (s *ServerTestSuite) call(h toolHandler, name string, args map[string]interface{}) (map[string]interface{}, error) {
	result, err := h(s.ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, err
	}
	s.Require().Len(result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	s.Require().True(ok, "expected text content")

	var out map[string]interface{}
	s.Require().NoError(json.Unmarshal([]byte(text.Text), &out))
	return out, nil
}

func (s *ServerTestSuite) requireCode(err error, code int) {
	var mcpErr *MCPError
	s.Require().True(errors.As(err, &mcpErr), "expected MCPError, got %v", err)
	s.Equal(code, mcpErr.Code)
}

func (s *ServerTestSuite) generate() map[string]interface{} {
	out, err := s.call(s.server.handleGenerateDocs, "generate_docs", map[string]interface{}{"path": s.tree})
	s.Require().NoError(err)
	return out
}

func (s *ServerTestSuite) TestGenerateDocs() {
	out := s.generate()

	s.Equal(float64(3), out["files_discovered"])
	s.Equal(float64(2), out["files_summarized"])
	s.Equal(float64(1), out["files_sentinel"])
	s.Equal(float64(0), out["degraded_calls"])
	s.Equal(s.server.cfg.Output, out["output"])
	s.NotZero(out["run_id"])

	data, err := os.ReadFile(s.server.cfg.Output)
	s.Require().NoError(err)
	s.Contains(string(data), "# Repository Documentation")
	s.Contains(string(data), "## util/strings.go")
	s.Contains(string(data), "Generated by: repodoc (local backend")
	s.False(s.server.lock.Held())
}

func (s *ServerTestSuite) TestGenerateDocs_Overrides() {
	output := filepath.Join(s.outDir, "docs.json")
	out, err := s.call(s.server.handleGenerateDocs, "generate_docs", map[string]interface{}{
		"path":       s.tree,
		"output":     output,
		"chunk_size": float64(16),
	})
	s.Require().NoError(err)
	s.Equal(output, out["output"])
	s.Greater(out["chunks_processed"].(float64), float64(2))

	data, err := os.ReadFile(output)
	s.Require().NoError(err)
	s.True(json.Valid(data))
}

func (s *ServerTestSuite) TestGenerateDocs_RunInProgress() {
	s.Require().True(s.server.lock.TryAcquire())
	defer s.server.lock.Release()

	_, err := s.call(s.server.handleGenerateDocs, "generate_docs", map[string]interface{}{"path": s.tree})
	s.requireCode(err, ErrorCodeRunInProgress)
}

func (s *ServerTestSuite) TestGenerateDocs_InvalidParams() {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"relative path", map[string]interface{}{"path": "relative/dir"}},
		{"missing directory", map[string]interface{}{"path": filepath.Join(s.tree, "nope")}},
		{"file path", map[string]interface{}{"path": filepath.Join(s.tree, "main.go")}},
		{"bad chunk size", map[string]interface{}{"path": s.tree, "chunk_size": float64(0)}},
		{"bad output", map[string]interface{}{"path": s.tree, "output": "s3://bucket-only"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.call(s.server.handleGenerateDocs, "generate_docs", tt.args)
			s.requireCode(err, ErrorCodeInvalidParams)
		})
	}
}

func (s *ServerTestSuite) TestGenerateDocs_NoFiles() {
	empty := s.T().TempDir()
	_, err := s.call(s.server.handleGenerateDocs, "generate_docs", map[string]interface{}{"path": empty})
	s.requireCode(err, ErrorCodeNoFiles)
	s.False(s.server.lock.Held())
}

func (s *ServerTestSuite) TestGenerateDocs_BackendUnavailable() {
	s.server.newProvider = func(ctx context.Context, cfg summarizer.Config) (summarizer.Provider, error) {
		return nil, errors.New("no credentials")
	}
	_, err := s.call(s.server.handleGenerateDocs, "generate_docs", map[string]interface{}{"path": s.tree})
	s.requireCode(err, ErrorCodeCapabilityUnmet)
}

func (s *ServerTestSuite) TestListRuns() {
	s.generate()
	s.generate()

	out, err := s.call(s.server.handleListRuns, "list_runs", map[string]interface{}{"limit": float64(1)})
	s.Require().NoError(err)
	s.Equal(float64(1), out["count"])

	runs := out["runs"].([]interface{})
	run := runs[0].(map[string]interface{})
	s.Equal(string(storage.RunCompleted), run["status"])
	s.Equal(s.tree, run["source"])
	s.Equal(summarizer.ProviderLocal, run["provider"])
	s.Contains(run, "finished_at")

	_, err = s.call(s.server.handleListRuns, "list_runs", map[string]interface{}{"limit": float64(5000)})
	s.requireCode(err, ErrorCodeInvalidParams)
}

func (s *ServerTestSuite) TestGetRunSummaries() {
	gen := s.generate()

	out, err := s.call(s.server.handleGetRunSummaries, "get_run_summaries", map[string]interface{}{"run_id": gen["run_id"]})
	s.Require().NoError(err)

	files := out["summaries"].([]interface{})
	s.Len(files, 3)
	paths := map[string]map[string]interface{}{}
	for _, f := range files {
		m := f.(map[string]interface{})
		paths[m["path"].(string)] = m
	}
	s.Contains(paths, "main.go")
	s.Equal(true, paths["empty.go"]["sentinel"])
	s.Equal(false, paths["main.go"]["degraded"])

	_, err = s.call(s.server.handleGetRunSummaries, "get_run_summaries", map[string]interface{}{"run_id": float64(999)})
	s.requireCode(err, ErrorCodeRunNotFound)

	_, err = s.call(s.server.handleGetRunSummaries, "get_run_summaries", map[string]interface{}{})
	s.requireCode(err, ErrorCodeInvalidParams)
}

func (s *ServerTestSuite) TestSearchSummaries() {
	s.generate()

	out, err := s.call(s.server.handleSearchSummaries, "search_summaries", map[string]interface{}{"query": "characters"})
	s.Require().NoError(err)
	s.Equal(float64(2), out["count"])
	first := out["results"].([]interface{})[0].(map[string]interface{})
	s.Contains(first["snippet"], "[characters]")

	_, err = s.call(s.server.handleSearchSummaries, "search_summaries", map[string]interface{}{"query": ""})
	s.requireCode(err, ErrorCodeEmptyQuery)

	_, err = s.call(s.server.handleSearchSummaries, "search_summaries", map[string]interface{}{"query": "   "})
	s.requireCode(err, ErrorCodeEmptyQuery)

	_, err = s.call(s.server.handleSearchSummaries, "search_summaries", map[string]interface{}{"query": "x", "limit": float64(101)})
	s.requireCode(err, ErrorCodeInvalidParams)
}

func (s *ServerTestSuite) TestProbe() {
	out, err := s.call(s.server.handleProbe, "probe", map[string]interface{}{"path": s.tree})
	s.Require().NoError(err)
	s.Equal(true, out["ready"])
	s.Len(out["capabilities"], 4)

	out, err = s.call(s.server.handleProbe, "probe", map[string]interface{}{
		"output": filepath.Join(s.outDir, "missing", "docs.md"),
	})
	s.Require().NoError(err)
	s.Equal(false, out["ready"])
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "history.db")

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	defer srv.Close()

	assert.NotNil(t, srv.mcp)
	assert.FileExists(t, cfg.DBPath)
	assert.Equal(t, cfg.DBPath, srv.cfg.DBPath)
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeRunInProgress, "busy", nil)
	assert.Equal(t, "MCP error -32002: busy", err.Error())
}
