// Package cache provides a Redis read-through cache in front of a
// variables.Reader. Only stored records are cached, never computed series.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethpandaops/projector/pkg/observability"
	projredis "github.com/ethpandaops/projector/pkg/redis"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Reader caches the records served by another Reader
type Reader struct {
	log         logrus.FieldLogger
	next        variables.Reader
	redisClient *redis.Client
	config      *projredis.Config
}

// NewReader wraps next with a Redis cache
func NewReader(log logrus.FieldLogger, next variables.Reader, redisClient *redis.Client, cfg *projredis.Config) *Reader {
	return &Reader{
		log:         log.WithField("component", "cache"),
		next:        next,
		redisClient: redisClient,
		config:      cfg,
	}
}

func (r *Reader) key(parts ...string) string {
	key := "records"
	for _, p := range parts {
		key += ":" + p
	}

	return r.config.PrefixKey(key)
}

// readThrough serves key from Redis, falling back to load on a miss. Redis
// failures degrade to an uncached read.
func readThrough[T any](ctx context.Context, r *Reader, record, key string, load func() (T, error)) (T, error) {
	data, err := r.redisClient.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.RecordCacheHit(record)
			return cached, nil
		}

		r.log.WithField("key", key).Warn("Discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		observability.RecordError("cache", "read")
		r.log.WithError(err).WithField("key", key).Warn("Cache read failed")
	}

	observability.RecordCacheMiss(record)

	value, err := load()
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}

	if err := r.redisClient.Set(ctx, key, encoded, r.config.TTL).Err(); err != nil {
		observability.RecordError("cache", "write")
		r.log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}

	return value, nil
}

// GetVariable implements variables.Reader
func (r *Reader) GetVariable(ctx context.Context, id int64) (*variables.Variable, error) {
	return readThrough(ctx, r, "variable", r.key("variable", strconv.FormatInt(id, 10)), func() (*variables.Variable, error) {
		return r.next.GetVariable(ctx, id)
	})
}

// ListVariants implements variables.Reader
func (r *Reader) ListVariants(ctx context.Context, name string) ([]*variables.Variable, error) {
	return readThrough(ctx, r, "variants", r.key("variants", name), func() ([]*variables.Variable, error) {
		return r.next.ListVariants(ctx, name)
	})
}

// ListOverrides implements variables.Reader
func (r *Reader) ListOverrides(ctx context.Context, variableID int64) ([]variables.Override, error) {
	return readThrough(ctx, r, "overrides", r.key("overrides", strconv.FormatInt(variableID, 10)), func() ([]variables.Override, error) {
		return r.next.ListOverrides(ctx, variableID)
	})
}

// GetTargetYear implements variables.Reader
func (r *Reader) GetTargetYear(ctx context.Context) (int, error) {
	return readThrough(ctx, r, "target_year", r.key("target_year"), func() (int, error) {
		return r.next.GetTargetYear(ctx)
	})
}

// ListNames implements variables.Reader
func (r *Reader) ListNames(ctx context.Context, kind variables.Kind) ([]string, error) {
	return readThrough(ctx, r, "names", r.key("names", string(kind)), func() ([]string, error) {
		return r.next.ListNames(ctx, kind)
	})
}

// Invalidate removes every cached record. Call it after writing to the
// underlying store.
func (r *Reader) Invalidate(ctx context.Context) error {
	iter := r.redisClient.Scan(ctx, 0, r.key("*"), 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	r.log.WithField("keys", len(keys)).Debug("Invalidated cache")

	return nil
}

var _ variables.Reader = (*Reader)(nil)
