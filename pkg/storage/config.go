// Package storage selects the backend that serves variable records.
package storage

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/projector/pkg/storage/catalog"
)

// Supported storage drivers
const (
	DriverSQLite  = "sqlite"
	DriverCatalog = "catalog"
)

var (
	// ErrUnknownDriver is returned for an unsupported storage driver
	ErrUnknownDriver = errors.New("unknown storage driver")
	// ErrPathRequired is returned when the sqlite driver has no path
	ErrPathRequired = errors.New("storage path is required for the sqlite driver")
)

// Config selects and configures the storage backend
type Config struct {
	Driver  string         `yaml:"driver" default:"sqlite"`
	Path    string         `yaml:"path" default:"projector.db"`
	Catalog catalog.Config `yaml:"catalog"`
}

// Validate validates the storage configuration
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return ErrPathRequired
		}
	case DriverCatalog:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}

	return nil
}
