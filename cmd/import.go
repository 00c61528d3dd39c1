package cmd

import (
	"fmt"

	"github.com/ethpandaops/projector/pkg/storage/catalog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	importFillGrid bool
)

// importCmd loads catalog files into the sqlite database
//
//nolint:gochecknoglobals // Cobra commands are typically global
var importCmd = &cobra.Command{
	Use:   "import [paths...]",
	Short: "Import YAML catalog files into the database",
	Long: `Import discovers YAML catalog files under the given paths (or the
configured catalog paths), checks their driver graph and copies every
variable, override and the target year into the sqlite database.

Examples:
  projector import catalog/
  projector import catalog/economy.yaml --fill-grid`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importFillGrid, "fill-grid", false, "Create empty overrides for every input variable and year through the target year")
}

func runImport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	paths := config.Storage.Catalog.GetPaths()
	if len(args) > 0 {
		paths = args
	}

	files, err := catalog.Discover(paths)
	if err != nil {
		return err
	}

	src, err := catalog.LoadFiles(logger, files...)
	if err != nil {
		return err
	}

	store, err := openStore(config)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	result, err := store.Import(ctx, src)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"files":     len(files),
		"variables": len(result.IDs),
		"overrides": result.Overrides,
	}

	if importFillGrid {
		created, err := store.EnsureOverrideGrid(ctx)
		if err != nil {
			return err
		}
		fields["placeholders"] = created
	}

	invalidateCache(ctx, config, store)

	logger.WithFields(fields).Info("Import complete")
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d variables and %d overrides from %d files\n",
		len(result.IDs), result.Overrides, len(files))

	return err
}
