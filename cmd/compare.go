package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	compareRuns   int
	compareFormat string
)

// compareCmd simulates two variables side by side
//
//nolint:gochecknoglobals // Cobra commands are typically global
var compareCmd = &cobra.Command{
	Use:   "compare [first-id second-id]",
	Short: "Simulate two variables and print them side by side",
	Long: `Compare simulates two variables through the stored target year. Without
arguments the first variant of each of the first two distinct variable names
is used.`,
	Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(_ *cobra.Command, args []string) error {
		if len(args) == 1 {
			return errCompareArgs
		}
		return nil
	}),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().IntVar(&compareRuns, "runs", 0, "Number of runs per variable (0 uses the configured default)")
	compareCmd.Flags().StringVar(&compareFormat, "format", formatTable, "Output format (table, json)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx := cmd.Context()

	var first, second int64

	if len(args) == 2 {
		if first, err = parseVariableID(args[0]); err != nil {
			return err
		}
		if second, err = parseVariableID(args[1]); err != nil {
			return err
		}
	} else if first, second, err = svc.Assembler().DefaultPair(ctx); err != nil {
		return err
	}

	result, err := svc.Assembler().CompareConfigured(ctx, first, second, compareRuns)
	if err != nil {
		return err
	}

	return renderComparison(cmd.OutOrStdout(), result, compareFormat)
}
