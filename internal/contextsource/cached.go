package contextsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/metrics"
)

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Cached keeps the JSON snapshot of Next's context in Redis for TTL.
// Redis failures are logged and bypassed: the audit then reads from Next.
type Cached struct {
	Next    Provider
	Client  *redis.Client
	Key     string
	TTL     time.Duration
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func (c Cached) Load(ctx context.Context) (*audit.Context, error) {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	data, err := c.Client.Get(ctx, c.Key).Bytes()
	c.Metrics.ObserveContextLatency("redis", time.Since(start))

	switch {
	case err == nil:
		var cached audit.Context
		jerr := json.Unmarshal(data, &cached)
		if jerr == nil {
			return &cached, nil
		}
		log.Warn("discarding unreadable cached context", zap.String("key", c.Key), zap.Error(jerr))
	case errors.Is(err, redis.Nil):
		log.Debug("context cache miss", zap.String("key", c.Key))
	default:
		log.Warn("context cache unavailable", zap.String("key", c.Key), zap.Error(err))
		return c.Next.Load(ctx)
	}

	loaded, err := c.Next.Load(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(loaded)
	if err != nil {
		return nil, fmt.Errorf("encoding context for cache: %w", err)
	}
	if err := c.Client.Set(ctx, c.Key, payload, c.TTL).Err(); err != nil {
		log.Warn("storing context in cache failed", zap.String("key", c.Key), zap.Error(err))
	}
	return loaded, nil
}

// Invalidate drops the cached snapshot so the next Load reads from Next.
func (c Cached) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, c.Key).Err()
}
