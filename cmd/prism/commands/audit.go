package commands

import (
	"github.com/spf13/cobra"

	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/internal/printer"
	"github.com/mcalpine/prism/pkg/colouring"
)

var auditGraphPath string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Count conflicting edges in a graph file",
	Long: `Load a graph file and report the number of edges whose endpoints
currently share a colour. Useful to inspect a baseline before running an
experiment, or a graph file written after one.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditGraphPath, "graph", "g", "baseline.yml", "Path to the graph file")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	g, err := graph.Load(auditGraphPath)
	if err != nil {
		return printer.Error("Failed to load graph", err.Error(), nil)
	}

	conflicts := colouring.CountConflicts(g)
	if conflicts == 0 {
		printer.Success("%s: %d nodes, %d edges, no conflicts\n",
			auditGraphPath, len(g.Nodes()), g.EdgeCount())
	} else {
		printer.Warning("%s: %d nodes, %d edges, %d conflicting edges\n",
			auditGraphPath, len(g.Nodes()), g.EdgeCount(), conflicts)
	}
	return nil
}
