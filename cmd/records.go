package cmd

import (
	"context"

	"github.com/ethpandaops/projector/pkg/cache"
	"github.com/ethpandaops/projector/pkg/engine"
	"github.com/ethpandaops/projector/pkg/storage"
	"github.com/ethpandaops/projector/pkg/storage/sqlite"
)

// openStore opens the configured sqlite database for writing
func openStore(config *engine.Config) (*sqlite.Store, error) {
	if config.Storage.Driver != storage.DriverSQLite {
		return nil, errReadOnlyStorage
	}

	return sqlite.Open(logger, config.Storage.Path)
}

// invalidateCache drops cached records after a write. A failure only means
// readers see stale records until the TTL expires.
func invalidateCache(ctx context.Context, config *engine.Config, store *sqlite.Store) {
	if !config.Redis.Enabled() {
		return
	}

	client, err := config.Redis.NewClient()
	if err != nil {
		logger.WithError(err).Warn("Failed to create Redis client")
		return
	}
	defer client.Close()

	if err := cache.NewReader(logger, store, client, &config.Redis).Invalidate(ctx); err != nil {
		logger.WithError(err).Warn("Failed to invalidate record cache")
	}
}
