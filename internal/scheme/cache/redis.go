// Package cache keeps the public active-scheme listing in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"schemeportal/internal/scheme/metrics"
	"schemeportal/internal/scheme/models"
	"schemeportal/pkg/platform/circuit"
)

const (
	generationKey = "portal:schemes:active:gen"
	listingPrefix = "portal:schemes:active:v2:"

	// noGeneration tells SetActive not to write.
	noGeneration int64 = -1
)

func listingKey(generation int64) string {
	return listingPrefix + strconv.FormatInt(generation, 10)
}

// RedisCache stores the active listing as one JSON value with a TTL, keyed by
// a generation counter. Invalidate bumps the counter, so a listing written
// under an older generation is never read again and expires with its TTL.
//
// Redis failures never reach callers: they count against the circuit breaker
// and read as a miss, so the service falls back to the store. When the bump
// itself fails this process bypasses the cache until a retry succeeds; other
// replicas may serve the previous listing for at most ttl.
type RedisCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger

	invalidatePending atomic.Bool
}

type Option func(*RedisCache)

// WithBreaker replaces the default breaker (3 failures, 15s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *RedisCache) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *RedisCache) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// NewRedisCache caches listings in client for ttl.
func NewRedisCache(client redis.Cmdable, ttl time.Duration, opts ...Option) *RedisCache {
	c := &RedisCache{
		client:  client,
		ttl:     ttl,
		breaker: circuit.New("scheme-cache", circuit.WithFailureThreshold(3), circuit.WithCooldown(15*time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActive returns the cached listing, the generation it was read under and
// whether it was found. The generation is noGeneration when Redis could not
// be consulted.
func (c *RedisCache) GetActive(ctx context.Context) ([]*models.Scheme, int64, bool) {
	if !c.breaker.Allow() {
		c.countLookup("bypass")
		return nil, noGeneration, false
	}
	if c.invalidatePending.Load() && !c.bump(ctx) {
		c.countLookup("bypass")
		return nil, noGeneration, false
	}

	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.failed(ctx, "read", err)
		return nil, noGeneration, false
	}

	data, err := c.client.Get(ctx, listingKey(generation)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.succeeded()
			c.countLookup("miss")
			return nil, generation, false
		}
		c.failed(ctx, "read", err)
		return nil, noGeneration, false
	}
	c.succeeded()

	var schemes []*models.Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		c.logWarn(ctx, "discarding undecodable scheme cache entry", err)
		c.countLookup("miss")
		return nil, generation, false
	}
	c.countLookup("hit")
	return schemes, generation, true
}

// SetActive writes the listing under the generation GetActive reported.
func (c *RedisCache) SetActive(ctx context.Context, generation int64, schemes []*models.Scheme) {
	if generation < 0 || c.invalidatePending.Load() || !c.breaker.Allow() {
		return
	}
	if schemes == nil {
		schemes = []*models.Scheme{}
	}
	payload, err := json.Marshal(schemes)
	if err != nil {
		c.logWarn(ctx, "failed to encode scheme cache entry", err)
		return
	}
	if err := c.client.Set(ctx, listingKey(generation), payload, c.ttl).Err(); err != nil {
		c.failed(ctx, "write", err)
		return
	}
	c.succeeded()
}

// Invalidate moves readers to a new generation. It is attempted even when the
// breaker is open.
func (c *RedisCache) Invalidate(ctx context.Context) {
	c.invalidatePending.Store(true)
	c.bump(ctx)
}

// bump increments the generation and clears the pending flag on success.
func (c *RedisCache) bump(ctx context.Context) bool {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.failed(ctx, "invalidate", err)
		return false
	}
	c.invalidatePending.Store(false)
	c.succeeded()
	return true
}

func (c *RedisCache) succeeded() {
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.countBreaker("closed")
	}
}

func (c *RedisCache) failed(ctx context.Context, op string, err error) {
	if c.metrics != nil {
		c.metrics.IncCacheError()
	}
	c.logWarn(ctx, "scheme cache "+op+" failed", err)
	if change := c.breaker.RecordFailure(); change.Opened {
		c.countBreaker("open")
		if c.logger != nil {
			c.logger.WarnContext(ctx, "scheme cache circuit opened; serving from store")
		}
	}
}

func (c *RedisCache) countLookup(result string) {
	if c.metrics != nil {
		c.metrics.IncCacheLookup(result)
	}
}

func (c *RedisCache) countBreaker(state string) {
	if c.metrics != nil {
		c.metrics.IncBreakerTransition(state)
	}
}

func (c *RedisCache) logWarn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err)
	}
}
