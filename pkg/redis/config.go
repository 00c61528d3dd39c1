// Package redis provides Redis client configuration
package redis

import (
	"errors"
	"fmt"
	"time"
)

// Define static errors
var (
	ErrInvalidTTL = errors.New("redis cache TTL must be positive")
)

// Config holds Redis client configuration. An empty URL disables Redis.
type Config struct {
	URL    string        `yaml:"url"`
	Prefix string        `yaml:"prefix" default:"projector"`
	TTL    time.Duration `yaml:"ttl" default:"5m"`
}

// Enabled reports whether a Redis URL is configured
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}

	if c.TTL <= 0 {
		return ErrInvalidTTL
	}

	if c.Prefix == "" {
		c.Prefix = "projector"
	}

	return nil
}

// PrefixKey adds the configured prefix to a Redis key
func (c *Config) PrefixKey(key string) string {
	if c.Prefix == "" {
		return key
	}

	return fmt.Sprintf("%s:%s", c.Prefix, key)
}
