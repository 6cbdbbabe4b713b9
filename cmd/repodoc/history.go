package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/repodoc/internal/storage"
)

// newHistoryCmd creates the "history" command
func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded documentation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			store, err := storage.NewSQLiteStorage(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.stdout, "No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tFILES\tDEGRADED\tDURATION\tSOURCE")
			for _, r := range runs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%d\t%s\t%s\n",
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Status,
					r.FilesSummarized+r.FilesSentinel, r.FilesDiscovered,
					r.DegradedCalls,
					r.Duration().Round(1e9),
					r.Source,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", storage.DefaultListLimit, "Maximum number of runs to list")
	return cmd
}
