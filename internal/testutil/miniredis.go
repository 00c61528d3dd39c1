package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewMiniredis starts an in-memory Redis that is closed when the test completes
func NewMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	return miniredis.RunT(t)
}

// RedisURL returns the connection URL of mr, suitable for a redis.Config
func RedisURL(mr *miniredis.Miniredis) string {
	return "redis://" + mr.Addr()
}

// NewMiniredisClient returns a miniredis server and a client connected to it.
// Both are closed when the test completes.
func NewMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := NewMiniredis(t)

	opts, err := redis.ParseURL(RedisURL(mr))
	if err != nil {
		t.Fatalf("failed to parse miniredis URL: %v", err)
	}

	client := redis.NewClient(opts)

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close miniredis client: %v", err)
		}
	})

	return mr, client
}
