package redis

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient parses the configured URL and returns a connected client
func (c *Config) NewClient() (*redis.Client, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return redis.NewClient(opts), nil
}
