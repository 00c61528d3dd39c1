package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	simulateRuns       int
	simulateTargetYear int
	simulateFormat     string
)

// simulateCmd runs a Monte Carlo simulation of one variable
//
//nolint:gochecknoglobals // Cobra commands are typically global
var simulateCmd = &cobra.Command{
	Use:   "simulate <variable-id>",
	Short: "Simulate a variable and print the yearly mean and spread",
	Long: `Simulate runs repeated noisy evaluations of every variant sharing the
variable's name and prints the yearly mean, standard deviation and the band
one standard deviation either side of the mean.

Examples:
  # Simulate variable 2 through the stored target year
  projector simulate 2

  # Use 1000 runs and a different target year
  projector simulate 2 --runs 1000 --target-year 2030`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateRuns, "runs", 0, "Number of runs (0 uses the configured default)")
	simulateCmd.Flags().IntVar(&simulateTargetYear, "target-year", 0, "Last projected year (0 uses the stored target year)")
	simulateCmd.Flags().StringVar(&simulateFormat, "format", formatTable, "Output format (table, json)")
}

func parseVariableID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid variable id %q", arg)
	}

	return id, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	id, err := parseVariableID(args[0])
	if err != nil {
		return err
	}

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx := cmd.Context()

	target := simulateTargetYear
	if target == 0 {
		if target, err = svc.Reader().GetTargetYear(ctx); err != nil {
			return err
		}
	}

	result, err := svc.Orchestrator().Simulate(ctx, id, target, simulateRuns)
	if err != nil {
		return err
	}

	return renderSimulation(cmd.OutOrStdout(), result, simulateFormat)
}
