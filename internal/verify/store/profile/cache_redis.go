package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hrgate/internal/verify/metrics"
	"hrgate/internal/verify/models"
	"hrgate/internal/verify/ports"
)

const profileKeyPrefix = "verify:profile:"

// CachedSource decorates a ProfileSource with a read-through Redis cache.
// Profile snapshots change rarely relative to verification traffic, so a
// short TTL keeps denials from outliving HR corrections for long.
type CachedSource struct {
	inner   ports.ProfileSource
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedSource wraps inner with a cache. TTL must be positive.
func NewCachedSource(inner ports.ProfileSource, client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// Fetch returns the cached snapshot when present, otherwise delegates to the
// inner source and caches the result. Cache failures degrade to the inner
// source; they never fail a verification.
func (c *CachedSource) Fetch(ctx context.Context, employeeID string) (*models.PrincipalProfile, error) {
	key := profileKeyPrefix + employeeID

	start := time.Now()
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.metrics.ObserveProfileFetchLatency("cache", time.Since(start))
		var profile models.PrincipalProfile
		if unmarshalErr := json.Unmarshal(raw, &profile); unmarshalErr == nil {
			return &profile, nil
		}
		// Corrupt entry: fall through to the inner source and overwrite.
		c.logWarn(ctx, "discarding unreadable cached profile", "employee_id", employeeID)
	} else if !errors.Is(err, redis.Nil) {
		c.logWarn(ctx, "profile cache read failed", "employee_id", employeeID, "error", err)
	}

	profile, err := c.inner.Fetch(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(profile); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.logWarn(ctx, "profile cache write failed", "employee_id", employeeID, "error", setErr)
		}
	}
	return profile, nil
}

// Invalidate drops the cached snapshot for one employee.
func (c *CachedSource) Invalidate(ctx context.Context, employeeID string) error {
	return c.client.Del(ctx, profileKeyPrefix+employeeID).Err()
}

func (c *CachedSource) logWarn(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, args...)
	}
}
