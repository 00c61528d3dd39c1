package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/projector/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the projector API, metrics and health servers",
	Long:  `Serve exposes variables, forecasts and comparisons over HTTP until interrupted.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("log-level") {
		level, err := logrus.ParseLevel(config.Logging)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	logger.Info("Configuration loaded")

	app, err := engine.NewService(logger, config)
	if err != nil {
		return err
	}

	if err := app.Start(cmd.Context()); err != nil {
		return err
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	return app.Stop()
}
