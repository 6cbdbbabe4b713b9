package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dshills/repodoc/internal/mcp"
	"github.com/dshills/repodoc/internal/storage"
)

// newServeCmd creates the "serve" command
func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// Stdout carries the protocol
			log.Printf("repodoc MCP server %s starting (provider %s, driver %s, build %s)",
				version, cfg.Provider, storage.DriverName, storage.BuildMode)

			mcp.ServerVersion = version
			server, err := mcp.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			errChan := make(chan error, 1)
			go func() {
				log.Println("MCP server ready, listening on stdio...")
				errChan <- server.Serve(cmd.Context())
			}()

			select {
			case <-cmd.Context().Done():
				log.Println("Shutting down...")
				return nil
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}
			log.Println("Server stopped")
			return nil
		},
	}
}
