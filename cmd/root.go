// Package cmd contains the CLI commands for projector
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config.yaml"

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

// rootCmd is the projector entrypoint; every subcommand reads the same config file
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "projector",
	Short: "Project economic variables forward and simulate their uncertainty",
	Long: `Projector interpolates input variables between known yearly values,
derives calculated variables from their drivers through a response formula,
and runs Monte Carlo simulations to estimate the spread of each forecast.`,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file with storage and simulation settings (default is "+defaultConfigPath+")")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error, fatal, panic)")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = defaultConfigPath
	}

	name, err := rootCmd.PersistentFlags().GetString("log-level")
	if err != nil {
		name = ""
	}

	level, err := logLevel(name)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
	}

	logger.SetLevel(level)
}

// logLevel parses the --log-level flag. An empty name means info; an unknown
// one also falls back to info alongside the parse error.
func logLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.InfoLevel, nil
	}

	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, err
	}

	return level, nil
}
