package main

import (
	"os"

	"wta/internal/platform/logger"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "wta-cli",
		Short:         "Offline tooling for wta comparisons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			lvl := "warn"
			if verbose {
				lvl = "debug"
			}
			logger.Init(logger.Options{Level: lvl, Format: "console", Writer: os.Stderr, Service: "wta-cli"})
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "More verbose output")

	root.AddCommand(newCompareCmd(), newMigrateCmd(), newVersionCmd())
	return root
}
