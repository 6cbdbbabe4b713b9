package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/probe"
)

// newProbeCmd creates the "probe" command
func newProbeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [repo]",
		Short: "Check that a run could start",
		Long:  "Probe checks the summarization backend, the output location, the history database and, when given, the repository.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			var source string
			if len(args) == 1 {
				source = args[0]
			}

			rep := probe.Probe(cmd.Context(), cfg, source)
			for _, c := range rep.Capabilities {
				fmt.Fprintln(a.stdout, c.String())
			}
			if !rep.OK() {
				return errCapabilitiesUnmet
			}
			return nil
		},
	}
	cmd.Flags().StringP(config.KeyOutput, "o", config.DefaultOutput, "Report location to check")
	return cmd
}
