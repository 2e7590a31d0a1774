package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// Cache stores resolved coordinates by normalized address.
type Cache interface {
	Get(ctx context.Context, key string) (Coordinates, bool, error)
	Set(ctx context.Context, key string, c Coordinates, ttl time.Duration) error
}

type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "geocode:"
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Coordinates, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Coordinates{}, false, nil
	}
	if err != nil {
		return Coordinates{}, false, err
	}
	var out Coordinates
	if err := json.Unmarshal(raw, &out); err != nil {
		return Coordinates{}, false, err
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, coords Coordinates, ttl time.Duration) error {
	raw, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err()
}

type cachedGeocoder struct {
	log   *logger.Logger
	inner Geocoder
	cache Cache
	ttl   time.Duration
}

// NewCachedGeocoder consults cache before inner. Cache failures are logged
// and never fail a lookup. Negative answers are not cached.
func NewCachedGeocoder(log *logger.Logger, inner Geocoder, cache Cache, ttl time.Duration) Geocoder {
	if cache == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &cachedGeocoder{log: log.With("service", "CachedGeocoder"), inner: inner, cache: cache, ttl: ttl}
}

func (g *cachedGeocoder) ResolveAddress(ctx context.Context, address string) (Coordinates, error) {
	key := NormalizeAddress(address)
	if c, ok, err := g.cache.Get(ctx, key); err != nil {
		g.log.Warn("geocode cache read failed (ignored)", "error", err)
	} else if ok {
		return c, nil
	}
	c, err := g.inner.ResolveAddress(ctx, address)
	if err != nil {
		return Coordinates{}, err
	}
	if err := g.cache.Set(ctx, key, c, g.ttl); err != nil {
		g.log.Warn("geocode cache write failed (ignored)", "error", err)
	}
	return c, nil
}
