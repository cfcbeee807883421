// Package cache is a read-through Redis cache for the event listing. It is
// an explicit object with a TTL and an invalidation hook owned by its
// callers, not a process-wide singleton: admin mutations call Invalidate.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"

	"aakar/internal/events"
	"aakar/internal/platform/redis"
)

const listKey = "events:active"

// Metrics tracks cache effectiveness.
type Metrics struct {
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

// NewMetrics creates and registers event cache metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Hits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aakar_event_cache_hits_total",
			Help: "Event listing cache hits",
		}),
		Misses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aakar_event_cache_misses_total",
			Help: "Event listing cache misses",
		}),
	}
}

// Cache wraps an events.Store with a Redis layer. A nil Redis client degrades
// to pass-through reads.
type Cache struct {
	store   events.Store
	redis   *redis.Client
	ttl     time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

func New(store events.Store, client *redis.Client, ttl time.Duration, m *Metrics, logger *slog.Logger) *Cache {
	return &Cache{store: store, redis: client, ttl: ttl, metrics: m, logger: logger}
}

// ListActive returns active events, serving from Redis when possible.
// Cache errors fall back to the store; a flaky cache must not break listings.
func (c *Cache) ListActive(ctx context.Context) ([]events.Event, error) {
	if c.redis == nil {
		return c.store.ListActive(ctx)
	}

	data, err := c.redis.Get(ctx, listKey).Bytes()
	if err == nil {
		var out []events.Event
		if err := json.Unmarshal(data, &out); err == nil {
			c.hit()
			return out, nil
		}
	} else if err != goredis.Nil {
		c.logger.WarnContext(ctx, "event cache read failed", "error", err.Error())
	}
	c.miss()

	out, err := c.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := c.redis.Set(ctx, listKey, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "event cache write failed", "error", err.Error())
		}
	}
	return out, nil
}

// Invalidate drops the cached listing. Admin mutations call this after every
// catalog change.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, listKey).Err(); err != nil {
		return fmt.Errorf("invalidate event cache: %w", err)
	}
	return nil
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.Hits.Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.Misses.Inc()
	}
}
