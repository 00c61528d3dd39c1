// Package engine wires storage, caching, simulation and the API into one service
package engine

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/projector/pkg/api"
	"github.com/ethpandaops/projector/pkg/redis"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/storage"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidLogLevel is returned when the logging level cannot be parsed
	ErrInvalidLogLevel = errors.New("invalid logging level")
)

// Config represents the complete engine configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9091"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`
	PProfAddr       string `yaml:"pprofAddr"`

	// Record storage
	Storage storage.Config `yaml:"storage"`

	// Optional lookup cache
	Redis redis.Config `yaml:"redis"`

	// Monte Carlo settings
	Simulation simulation.Config `yaml:"simulation"`

	// API service configuration
	API api.Config `yaml:"api"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Logging); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging)
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if err := c.Redis.Validate(); err != nil {
		return err
	}

	if err := c.Simulation.Validate(); err != nil {
		return err
	}

	return c.API.Validate()
}
