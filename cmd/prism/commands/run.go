package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcalpine/prism/internal/config"
	"github.com/mcalpine/prism/internal/experiment"
	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/internal/printer"
	"github.com/mcalpine/prism/internal/results"
)

var (
	runConfigPath string
	runMode       string
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a colouring experiment",
	Long: `Run a colouring experiment described by a prism.yml configuration.

Each run clones the baseline graph, creates one agent per node, and plays
decision rounds while the palette shrinks and edges are rewired. Every
audited round emits a (run, palette size, conflicts) record; the final
summary reports how often runs ended conflict-free.

Examples:
  # Run the experiment described by ./prism.yml
  prism run

  # Override mode and results path
  prism run --config experiments/perturbation.yml --mode concurrent --out async.csv`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "prism.yml", "Path to the experiment configuration")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Override the configured mode (sequential|concurrent|random|baseline)")
	runCmd.Flags().StringVarP(&runOutput, "out", "o", "", "Override the configured CSV output path")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return printer.Error("Failed to load configuration", err.Error(), []string{
			"Check that the config file exists and is valid YAML",
			"Generate a graph first with 'prism generate'",
		})
	}

	if runMode != "" {
		cfg.Mode = config.Mode(runMode)
		cfg.ApplyDefaults()
		if err := cfg.Mode.Validate(); err != nil {
			return printer.Error("Invalid mode", err.Error(), nil)
		}
	}
	if runOutput != "" {
		cfg.Output = runOutput
	}

	base, err := graph.Load(cfg.Graph)
	if err != nil {
		return printer.Error("Failed to load graph", err.Error(), []string{
			"Generate one with 'prism generate --nodes 100 --degree 6 --out " + cfg.Graph + "'",
		})
	}

	memory := results.NewMemorySink()
	var sink results.Sink = memory
	if cfg.Output != "" {
		csvSink, err := results.NewCSVSink(cfg.Output)
		if err != nil {
			return printer.Error("Failed to open results file", err.Error(), nil)
		}
		sink = results.NewMultiSink(memory, csvSink)
	}

	// Ctrl-C cancels between rounds; partial results are still flushed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Info("Running %s experiment: %d runs, %d rounds, palette %d\n",
		cfg.Mode, cfg.Runs, cfg.MaxRounds, cfg.PaletteSize)

	runner := experiment.NewRunner(cfg, base, sink)
	runErr := runner.Run(ctx)

	if err := sink.Close(); err != nil {
		return printer.Error("Failed to write results", err.Error(), nil)
	}

	if runErr != nil {
		return printer.Error("Experiment failed", runErr.Error(), nil)
	}

	summary := results.Summarize(memory.Records())
	printer.Success("Experiment complete\n\n")
	results.FormatSummary(os.Stdout, summary)

	if cfg.Output != "" {
		printer.Info("\nResults written to %s\n", cfg.Output)
	}
	return nil
}
