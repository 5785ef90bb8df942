package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chioni16/ssa/analytics"
	"github.com/chioni16/ssa/bril"
	"github.com/chioni16/ssa/cfg"
	"github.com/chioni16/ssa/output"
	"github.com/chioni16/ssa/sccp"
)

// AnalyzeOptions carries the resolved analyze flags.
type AnalyzeOptions struct {
	Dot        string
	SCCP       bool
	Format     output.OutputFormat
	OutputFile string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Read a bril JSON program from stdin and dump CFG, dominance and SSA per function",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := AnalyzeOptions{Format: output.FormatText}

		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" { //nolint:all
			fileCfg, err := loadConfigFile(configFile)
			if err != nil {
				return err
			}
			opts.Dot = fileCfg.Dot
			opts.SCCP = fileCfg.SCCP
			opts.OutputFile = fileCfg.OutputFile
			if fileCfg.Output != "" {
				opts.Format = output.OutputFormat(fileCfg.Output)
			}
		}

		if cmd.Flags().Changed("dot") {
			opts.Dot, _ = cmd.Flags().GetString("dot") //nolint:all
		}
		if cmd.Flags().Changed("sccp") {
			opts.SCCP, _ = cmd.Flags().GetBool("sccp") //nolint:all
		}
		if cmd.Flags().Changed("output") {
			format, _ := cmd.Flags().GetString("output") //nolint:all
			opts.Format = output.OutputFormat(format)
		}
		if cmd.Flags().Changed("output-file") {
			opts.OutputFile, _ = cmd.Flags().GetString("output-file") //nolint:all
		}
		verbose, _ := cmd.Flags().GetBool("verbose") //nolint:all

		verbosity := output.VerbosityDefault
		if verbose {
			verbosity = output.VerbosityVerbose
		}
		logger := output.NewLogger(verbosity)

		if err := runAnalyze(os.Stdin, os.Stdout, logger, opts); err != nil {
			analytics.Error("analyze")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("dot", "", "Render each function's CFG to <prefix><function>.svg via graphviz")
	analyzeCmd.Flags().Bool("sccp", false, "Run sparse conditional constant propagation and report findings")
	analyzeCmd.Flags().StringP("output", "o", "", "Findings format: text, json or sarif")
	analyzeCmd.Flags().StringP("output-file", "f", "", "Findings file path (default stdout)")
	analyzeCmd.Flags().String("config", "", "YAML file with defaults for the flags above")
	analyzeCmd.Flags().BoolP("verbose", "v", false, "Per-stage progress on stderr")
}

const separator = "========================================"

// runAnalyze is the driver: one program in, per-function dumps out.
func runAnalyze(r io.Reader, w io.Writer, logger *output.Logger, opts AnalyzeOptions) error {
	program, err := bril.LoadProgram(r)
	if err != nil {
		analytics.Error("load")
		return err
	}
	analytics.Analyze(len(program.Functions), opts.SCCP, string(opts.Format))

	logger.StartProgress("analyzing functions", len(program.Functions))
	defer logger.FinishProgress()

	var findings []output.Finding
	for i := range program.Functions {
		fn := &program.Functions[i]
		logger.StepProgress("@" + fn.Name)
		logger.Progress("building CFG for @%s", fn.Name)

		g, err := cfg.NewBuilder().Build(fn)
		if err != nil {
			return err
		}

		if opts.Dot != "" {
			logger.Progress("rendering %s%s.svg", opts.Dot, fn.Name)
			if err := g.RenderSVG(opts.Dot + fn.Name); err != nil {
				return err
			}
		}

		fmt.Fprint(w, g)
		fmt.Fprintln(w, separator)

		g.RemoveUnreachable()
		frontiers, err := g.DominanceFrontiers()
		if err != nil {
			return err
		}
		fmt.Fprint(w, formatFrontiers(frontiers))
		fmt.Fprintln(w, separator)

		if err := g.ToSSA(); err != nil {
			return err
		}
		fmt.Fprint(w, g)

		if opts.SCCP {
			logger.Progress("running sccp over @%s", fn.Name)
			res := sccp.Run(g)
			fmt.Fprintln(w, separator)
			fmt.Fprint(w, res)
			findings = append(findings, output.CollectFindings(g, res)...)
		}
	}

	if opts.SCCP {
		return reportFindings(w, findings, opts)
	}
	return nil
}

// formatFrontiers prints the frontier map with both keys and members
// sorted, so runs diff cleanly.
func formatFrontiers(frontiers map[string]map[string]bool) string {
	labels := make([]string, 0, len(frontiers))
	for label := range frontiers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	var sb strings.Builder
	for _, label := range labels {
		members := make([]string, 0, len(frontiers[label]))
		for m := range frontiers[label] {
			members = append(members, m)
		}
		sort.Strings(members)
		fmt.Fprintf(&sb, "%s: %q\n", label, members)
	}
	return sb.String()
}

func reportFindings(w io.Writer, findings []output.Finding, opts AnalyzeOptions) error {
	formatter := output.NewFormatter(opts.Format)
	if opts.OutputFile == "" {
		return formatter.Format(w, findings)
	}
	file, err := os.Create(opts.OutputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Println("Error closing output file: ", err)
		}
	}()
	return formatter.Format(file, findings)
}
