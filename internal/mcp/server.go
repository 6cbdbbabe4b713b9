package mcp

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/pipeline"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/internal/summarizer"
)

const (
	// ServerName is the MCP server name
	ServerName = "repodoc"
)

// ServerVersion is the version reported to MCP clients
var ServerVersion = "1.0.0"

// ProviderFactory creates the summarization backend for one run
type ProviderFactory func(ctx context.Context, cfg summarizer.Config) (summarizer.Provider, error)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp         *server.MCPServer
	storage     storage.Storage
	cfg         config.Config
	lock        pipeline.RunLock
	newProvider ProviderFactory
	logger      *log.Logger
}

// NewServer creates a new MCP server instance. Runs started through the
// server use cfg as their base configuration and are recorded in the
// history database at cfg.DBPath, or the default location when unset.
func NewServer(cfg config.Config) (*Server, error) {
	dbPath, err := storage.ResolvePath(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	cfg.DBPath = dbPath

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return newServer(cfg, store), nil
}

func newServer(cfg config.Config, store storage.Storage) *Server {
	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion),
		storage:     store,
		cfg:         cfg,
		newProvider: summarizer.New,
		// Stdout carries the protocol
		logger: log.New(os.Stderr, "repodoc: ", log.LstdFlags),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the history database
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(generateDocsTool(), s.handleGenerateDocs)
	s.mcp.AddTool(listRunsTool(), s.handleListRuns)
	s.mcp.AddTool(getRunSummariesTool(), s.handleGetRunSummaries)
	s.mcp.AddTool(searchSummariesTool(), s.handleSearchSummaries)
	s.mcp.AddTool(probeTool(), s.handleProbe)
}
