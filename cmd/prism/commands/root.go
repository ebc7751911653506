package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Prism - Decentralized graph colouring simulator",
	Long: `Prism simulates decentralized graph colouring: every graph node is
controlled by an autonomous agent that must pick a colour no neighbour
shares, while the colour palette shrinks and the topology is perturbed.

Agents bias their choices with a shared per-colour reputation board and
resolve colliding proposals through a deterministic pairwise negotiation
protocol, either sequentially or as one goroutine per agent synchronized
on a round barrier.`,
	Version: version,
}

func init() {
	// Silence Cobra's default error and usage printing; the printer package
	// already writes the formatted error to stderr.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
