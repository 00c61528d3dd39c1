// Package api exposes variable records, forecasts and comparisons over HTTP.
package api

import (
	"errors"
	"fmt"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

var (
	// ErrAPIAddrRequired is returned when the server is enabled without a listen address
	ErrAPIAddrRequired = errors.New("api address is required when API is enabled")
	// ErrInvalidShutdownTimeout is returned for a negative drain period
	ErrInvalidShutdownTimeout = errors.New("shutdownTimeout must not be negative")
)

// Config controls the read-only forecast API
type Config struct {
	Enabled bool   `yaml:"enabled" default:"false"`
	Addr    string `yaml:"addr" default:":8080"`
	// AllowOrigins lists the browser origins allowed to fetch forecasts. Empty allows any.
	AllowOrigins []string `yaml:"allowOrigins"`
	// ShutdownTimeout bounds how long in-flight simulations may finish on stop.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"10s"`
}

// Validate validates the API configuration
func (c *Config) Validate() error {
	if c.Enabled && c.Addr == "" {
		return ErrAPIAddrRequired
	}

	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidShutdownTimeout, c.ShutdownTimeout)
	}

	return nil
}

func (c *Config) origins() []string {
	if len(c.AllowOrigins) == 0 {
		return []string{"*"}
	}

	return c.AllowOrigins
}

func (c *Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}

	return c.ShutdownTimeout
}
