package cmd

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/projector/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads the engine configuration from a YAML file. A missing file
// yields the defaults.
func LoadConfig(path string) (*engine.Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &engine.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// openService loads the configuration and builds an engine service without
// starting any server. Analysis commands log errors only unless --log-level
// is given.
func openService(cmd *cobra.Command) (*engine.Service, error) {
	config, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("log-level") {
		logger.SetLevel(logrus.ErrorLevel)
	}

	return engine.NewService(logger, config)
}

// closeService releases the resources of a service opened by openService
func closeService(svc *engine.Service) {
	if err := svc.Stop(); err != nil {
		logger.WithError(err).Warn("Failed to close service")
	}
}
