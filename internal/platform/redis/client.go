// Package redis dials the profile snapshot cache. The cache is optional: with
// no URL configured the engine fetches profiles directly on every episode.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hrgate/internal/platform/config"
)

// Connect establishes the cache connection described by cfg and verifies it
// with a bounded ping before handing it out. An empty URL disables the cache;
// Connect then returns (nil, nil) and the caller skips the cached source.
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	pingCtx := context.Background()
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(pingCtx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
