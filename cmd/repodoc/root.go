package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/storage"
)

// app carries what every command shares
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{v: config.NewViper(), stdout: stdout, stderr: stderr}
}

func newRootCmd(a *app) *cobra.Command {
	d := config.Default()
	rootCmd := &cobra.Command{
		Use:           "repodoc",
		Short:         "Generate developer documentation for a repository",
		Long:          "repodoc clones or copies a repository, summarizes every code file with a language model and writes a single documentation report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			log.SetOutput(a.stderr)
			// Flags of the executing command, inherited ones included
			return a.v.BindPFlags(cmd.Flags())
		},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyProvider, d.Provider, "Summarization backend: ollama, gemini or local")
	pf.String(config.KeyEndpoint, d.BackendEndpoint, "Ollama base URL")
	pf.String(config.KeyModel, "", "Model name passed to the backend (default depends on provider)")
	pf.Duration(config.KeyTimeout, d.CallTimeout, "Per-call timeout, retries included")
	pf.Duration(config.KeyPacing, d.PacingDelay, "Minimum gap between backend calls")
	pf.Int(config.KeyChunkSize, d.ChunkSize, "Maximum characters per chunk")
	pf.Int(config.KeyCacheSize, d.CacheSize, "Response cache entries (0 disables)")
	pf.String(config.KeyDBPath, "", "History database (default ~/.repodoc/history.db)")
	pf.Bool(config.KeyDebug, false, "Log backend calls to stderr")

	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newProbeCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// loadConfig reads the configuration and resolves the history location
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, err
	}
	cfg.DBPath, err = storage.ResolvePath(cfg.DBPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newVersionCmd creates the "version" command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print repodoc version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "repodoc %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
		},
	}
}
