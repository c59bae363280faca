package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"trouwen/internal/catalog/models"
	"trouwen/internal/platform/metrics"
	id "trouwen/pkg/domain"
	"trouwen/pkg/platform/circuit"
	txcontext "trouwen/pkg/platform/tx"
)

const cacheKeyPrefix = "trouwen:catalog:type:"

// Backend is the authoritative catalog store behind the cache.
type Backend interface {
	Create(ctx context.Context, t *models.MarriageType) error
	Update(ctx context.Context, t *models.MarriageType) error
	Delete(ctx context.Context, typeID id.MarriageTypeID) error
	FindByID(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error)
	List(ctx context.Context, filter models.Filter) ([]*models.MarriageType, error)
}

// Cached serves FindByID from Redis and falls back to the backend on a miss.
// Writes go to the backend and evict the cached entry after commit. Redis failures never
// fail the call; after repeated failures reads bypass Redis until a probe
// succeeds again.
type Cached struct {
	Backend
	client  *redis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CacheOption func(*Cached)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

// WithCacheBreaker replaces the default breaker guarding Redis reads.
func WithCacheBreaker(b *circuit.Breaker) CacheOption {
	return func(c *Cached) {
		c.breaker = b
	}
}

func NewCached(backend Backend, client *redis.Client, ttl time.Duration, opts ...CacheOption) *Cached {
	c := &Cached{
		Backend: backend,
		client:  client,
		ttl:     ttl,
		breaker: circuit.New("catalog-cache", circuit.WithCooldown(10*time.Second)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(typeID id.MarriageTypeID) string {
	return cacheKeyPrefix + typeID.String()
}

func (c *Cached) FindByID(ctx context.Context, typeID id.MarriageTypeID) (*models.MarriageType, error) {
	if !c.breaker.Allow() {
		c.metrics.IncCacheLookup(false)
		return c.Backend.FindByID(ctx, typeID)
	}

	key := cacheKey(typeID)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.recordSuccess(ctx)
		var t models.MarriageType
		if err := json.Unmarshal(raw, &t); err == nil {
			c.metrics.IncCacheLookup(true)
			return &t, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable catalog cache entry", "key", key)
	case errors.Is(err, redis.Nil):
		c.recordSuccess(ctx)
	default:
		c.recordFailure(ctx, "read", err)
	}
	c.metrics.IncCacheLookup(false)

	t, err := c.Backend.FindByID(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if c.breaker.IsOpen() {
		return t, nil
	}
	if raw, err := json.Marshal(t); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.recordFailure(ctx, "write", err)
		}
	}
	return t, nil
}

func (c *Cached) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "catalog cache recovered")
	}
}

func (c *Cached) recordFailure(ctx context.Context, op string, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "catalog cache unavailable, reading from store", "error", err)
		return
	}
	c.logger.DebugContext(ctx, "catalog cache "+op+" failed", "error", err)
}

func (c *Cached) Update(ctx context.Context, t *models.MarriageType) error {
	if err := c.Backend.Update(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, t.ID)
	return nil
}

func (c *Cached) Delete(ctx context.Context, typeID id.MarriageTypeID) error {
	if err := c.Backend.Delete(ctx, typeID); err != nil {
		return err
	}
	c.evict(ctx, typeID)
	return nil
}

// evict drops the cached entry once the write is committed. Evicting earlier
// would let a concurrent reader cache the old committed row again.
func (c *Cached) evict(ctx context.Context, typeID id.MarriageTypeID) {
	txcontext.AfterCommit(ctx, func() { c.del(ctx, typeID) })
}

func (c *Cached) del(ctx context.Context, typeID id.MarriageTypeID) {
	if err := c.client.Del(ctx, cacheKey(typeID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache evict failed", "type_id", typeID.String(), "error", err)
	}
}
