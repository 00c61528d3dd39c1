package cmd

import (
	"fmt"

	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	graphDOT    bool
	graphFormat string
)

// graphCmd prints the driver graph of every stored variable
//
//nolint:gochecknoglobals // Cobra commands are typically global
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the driver graph of all variables",
	Long: `Graph loads every variable, refuses cyclic driver relations and prints
the variables grouped by driver depth. Use --dot for Graphviz output.

Examples:
  projector graph --dot | dot -Tpng > graph.png`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().BoolVar(&graphDOT, "dot", false, "Output in Graphviz DOT format")
	graphCmd.Flags().StringVar(&graphFormat, "format", formatTable, "Output format (table, json)")
}

func runGraph(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	graph, err := dependencies.LoadAll(cmd.Context(), svc.Reader(), svc.Orchestrator().Config().MaxDepth)
	if err != nil {
		return err
	}

	if graphDOT {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateDOTFormat())
		return err
	}

	return renderGraph(cmd.OutOrStdout(), graph, graphFormat)
}
