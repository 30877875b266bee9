package httpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/graph"
	"github.com/dmitrijs2005/eventgraph/internal/server/metrics"
)

const (
	cachePrefix        = "eventgraph:cache:"
	cacheGenerationKey = cachePrefix + "gen"
)

// ResponseCache stores serialized results of anonymous queries in Redis.
// Every key embeds the current generation; a mutation bumps the generation
// so all earlier entries become unreachable and expire on their own.
type ResponseCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewResponseCache(rdb *redis.Client, ttl time.Duration, logger logging.Logger, m *metrics.Metrics) *ResponseCache {
	return &ResponseCache{
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger.With("module", "response_cache"),
		metrics: m,
	}
}

// Key derives the cache key for req under the current generation.
func (c *ResponseCache) Key(ctx context.Context, req graph.Request) (string, error) {
	gen, err := c.rdb.Get(ctx, cacheGenerationKey).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		return "", err
	}

	// json.Marshal sorts map keys, so equal variables hash equally
	vars, err := json.Marshal(req.Variables)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(req.OperationName))
	h.Write([]byte{0})
	h.Write([]byte(req.Query))
	h.Write([]byte{0})
	h.Write(vars)
	return cachePrefix + gen + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached body for key. Backend errors count as a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		c.metrics.CacheHit()
		return b, true
	case err != nil && !errors.Is(err, redis.Nil):
		c.metrics.CacheError()
		c.logger.Warn(ctx, "cache get", "error", err)
	}
	c.metrics.CacheMiss()
	return nil, false
}

func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.metrics.CacheError()
		c.logger.Warn(ctx, "cache set", "error", err)
	}
}

// Invalidate makes every cached response stale.
func (c *ResponseCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		c.metrics.CacheError()
		c.logger.Warn(ctx, "cache invalidate", "error", err)
	}
}
