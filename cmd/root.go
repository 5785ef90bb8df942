package cmd

import (
	"github.com/chioni16/ssa/analytics"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "none"
)

var rootCmd = &cobra.Command{
	Use:   "bril-ssa",
	Short: "bril-ssa - CFG, SSA and sparse conditional constant propagation for bril programs",
	Long: `bril-ssa turns the body of each function in a bril JSON program into a
control-flow graph, rewrites it into SSA form, and optionally runs sparse
conditional constant propagation over the result.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		analytics.Init(disableMetrics)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		analytics.Close()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
}
