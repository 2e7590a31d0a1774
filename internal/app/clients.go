package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

const geocodeCachePrefix = "placeshare:geocode:"

type Clients struct {
	Redis    *redis.Client
	Bucket   objectstorage.BucketService
	Storage  objectstorage.Config
	Geocoder geocode.Geocoder
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return Clients{}, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("ping redis: %w", err)
		}
		out.Redis = rdb
	}

	// Object storage
	bucket, storageCfg, err := resolveBucketService(log, cfg.Storage.ObjectStorage())
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Bucket = bucket
	out.Storage = storageCfg

	// Geocoding
	var geocoder geocode.Geocoder
	if strings.TrimSpace(cfg.Geocode.GoogleAPIKey) == "" {
		log.Warn("GOOGLE_API_KEY not set; using static geocoder")
		geocoder = geocode.NewStaticGeocoder()
	} else {
		g, err := geocode.NewGoogleGeocoder(log, metrics, cfg.Geocode.Google())
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init geocoder: %w", err)
		}
		geocoder = g
	}
	if out.Redis != nil {
		geocoder = geocode.NewCachedGeocoder(log, geocoder, geocode.NewRedisCache(out.Redis, geocodeCachePrefix), cfg.Geocode.CacheTTL)
	}
	out.Geocoder = geocoder

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
