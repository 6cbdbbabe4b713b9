package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dshills/repodoc/internal/acquire"
	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/pipeline"
	"github.com/dshills/repodoc/internal/probe"
	"github.com/dshills/repodoc/internal/report"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/internal/summarizer"
)

var errCapabilitiesUnmet = errors.New("required capabilities are missing")

// newGenerateCmd creates the "generate" command
func newGenerateCmd(a *app) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Document a repository",
		Long: `Generate acquires the repository (git URL or local directory) into a fresh
working directory, summarizes every code file and writes the report.

The report format follows the output: .json writes JSON, s3://bucket/key
uploads to an S3-compatible store and anything else writes Markdown.`,
		RunE: a.runGenerate,
	}

	f := cmd.Flags()
	f.StringP("repo", "r", "", "Repository URL or local directory (required)")
	f.StringP(config.KeyOutput, "o", d.Output, "Report location: .md, .docx, .json or s3://bucket/key")
	f.StringP(config.KeyTempDir, "t", d.TempDir, "Working directory for the copy")
	f.Bool(config.KeyKeep, false, "Keep the working directory afterwards")
	f.StringSlice(config.KeyExcludeDirs, d.ExcludeDirs, "Directory names never descended into")
	f.StringSlice(config.KeyExtensions, d.Extensions, "File extensions to document")
	f.Bool(config.KeyFollowSymlinks, false, "Descend into symlinked directories")
	f.Bool(config.KeySkipCombine, false, "Use the chunk summary directly for single-chunk files")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repo, _ := cmd.Flags().GetString("repo")

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rep := probe.Probe(ctx, cfg, repo)
	if unmet := rep.Unmet(); len(unmet) > 0 {
		fmt.Fprintln(a.stderr, "Missing capabilities:")
		for _, c := range unmet {
			fmt.Fprintf(a.stderr, "  - %s: %s\n", c.Name, c.Detail)
		}
		return errCapabilitiesUnmet
	}

	sink, err := report.ForOutput(cfg.Output, cfg.ObjectStore())
	if err != nil {
		return err
	}

	provider, err := summarizer.New(ctx, cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create summarization backend: %w", err)
	}
	client := summarizer.NewClient(provider, cfg.ClientConfig())
	defer func() { _ = client.Close() }()

	acq := acquire.New()
	acq.Keep = cfg.Keep
	acq.SkipDirs = cfg.ExcludeDirs
	if cfg.Debug {
		acq.Progress = a.stderr
	}
	ws, err := acq.Acquire(ctx, repo, cfg.TempDir)
	if err != nil {
		return err
	}
	defer a.cleanup(ws)

	opts := []pipeline.Option{
		pipeline.WithFileStart(func(i, n int, path string) {
			fmt.Fprintf(a.stdout, "[%d/%d] Summarizing %s\n", i, n, path)
		}),
	}
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		log.Printf("Warning: run history disabled: %v", err)
	} else {
		defer func() { _ = store.Close() }()
		opts = append(opts, pipeline.WithRecorder(store, pipeline.RunInfo{Source: repo, Output: cfg.Output}))
	}

	res, err := pipeline.New(cfg, client, opts...).Run(ctx, ws.Path)
	if errors.Is(err, pipeline.ErrNoFiles) {
		fmt.Fprintln(a.stdout, "[!] No code files found. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}

	doc := res.Document(repo, report.GeneratedByLine(provider.Provider(), provider.Model()))
	location, err := sink.Write(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "[+] Saved documentation to %s\n", location)

	if res.Stats.DegradedCalls > 0 {
		log.Printf("Warning: %d of %d summarization calls failed; their summaries are marked in the report",
			res.Stats.DegradedCalls, res.Stats.SummaryCalls)
	}
	return nil
}

// cleanup removes the working directory unless it is kept
func (a *app) cleanup(ws *acquire.Workspace) {
	if ws.Keep {
		fmt.Fprintf(a.stdout, "[+] Keeping cloned repo at %s\n", ws.Path)
		return
	}
	removed, err := ws.Cleanup()
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	if removed {
		fmt.Fprintf(a.stdout, "[+] Removed temporary clone %s\n", ws.Path)
	}
}
