package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/spf13/cobra"
)

// targetYearCmd shows or sets the stored target year
//
//nolint:gochecknoglobals // Cobra commands are typically global
var targetYearCmd = &cobra.Command{
	Use:   "target-year [year]",
	Short: "Show or set the last projected year",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTargetYear,
}

func init() {
	rootCmd.AddCommand(targetYearCmd)
}

func runTargetYear(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	store, err := openStore(config)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	if len(args) == 0 {
		year, err := store.GetTargetYear(ctx)
		if errors.Is(err, variables.ErrTargetYearNotConfigured) {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "No target year configured")
			return err
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), year)
		return err
	}

	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}

	if err := store.SetTargetYear(ctx, year); err != nil {
		return err
	}

	invalidateCache(ctx, config, store)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Target year set to %d\n", year)
	return err
}
