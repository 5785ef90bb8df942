package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chioni16/ssa/analytics"
	"github.com/chioni16/ssa/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		analytics.Version()
		output.PrintBanner(os.Stdout, Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
