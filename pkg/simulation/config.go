package simulation

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/projector/pkg/variables"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrInvalidMaxDepth is returned when the depth bound is negative
	ErrInvalidMaxDepth = errors.New("maxDepth must not be negative")
)

// Config contains Monte Carlo settings
type Config struct {
	Runs        int `yaml:"runs" default:"100"`
	MaxRuns     int `yaml:"maxRuns" default:"10000"`
	MaxDepth    int `yaml:"maxDepth" default:"32"`
	Concurrency int `yaml:"concurrency" default:"8"`
	// MaxTargetYear caps the forecast horizon. Zero leaves it unbounded.
	MaxTargetYear int `yaml:"maxTargetYear" default:"2100"`
	// Seed makes noisy runs reproducible. Each run draws from its own stream.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Runs <= 0 {
		return fmt.Errorf("%w: runs must be positive, got %d", variables.ErrInvalidRuns, c.Runs)
	}

	if c.MaxRuns < c.Runs {
		return fmt.Errorf("%w: maxRuns %d is below the default of %d", variables.ErrInvalidRuns, c.MaxRuns, c.Runs)
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.MaxTargetYear != 0 && c.MaxTargetYear < variables.BaseYear {
		return fmt.Errorf("%w: maxTargetYear %d is before %d", variables.ErrInvalidTargetYear, c.MaxTargetYear, variables.BaseYear)
	}

	return nil
}

// resolveRuns applies the default and the upper bound to a requested run count
func (c *Config) resolveRuns(runs int) (int, error) {
	if runs == 0 {
		return c.Runs, nil
	}

	if runs < 0 || runs > c.MaxRuns {
		return 0, fmt.Errorf("%w: %d is outside 1..%d", variables.ErrInvalidRuns, runs, c.MaxRuns)
	}

	return runs, nil
}

// years bounds the target year by the configured horizon and expands it
func (c *Config) years(targetYear int) ([]int, error) {
	if c.MaxTargetYear > 0 && targetYear > c.MaxTargetYear {
		return nil, fmt.Errorf("%w: %d is after %d", variables.ErrInvalidTargetYear, targetYear, c.MaxTargetYear)
	}

	return variables.Years(targetYear)
}
