/**
 * @description
 * Distributed transfer rate limiting backed by Redis. The limiter counts
 * transfer attempts per sender inside a fixed window using a small Lua script
 * (INCR + PEXPIRE under one round trip) so multiple service instances share
 * one budget. When Redis is not configured the service runs without limits.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

// RateLimiter counts attempts within a window and reports how long a blocked
// caller should wait.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisRateLimiter implements RateLimiter on a shared Redis instance.
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRateLimiter creates a limiter with the given key prefix.
func NewRedisRateLimiter(client redis.UniversalClient, prefix string) *RedisRateLimiter {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "bankapp:rate_limit"
	}
	return &RedisRateLimiter{client: client, prefix: trimmed}
}

func (r *RedisRateLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}
	scope = strings.TrimSpace(scope)
	subject = strings.TrimSpace(subject)
	if scope == "" || subject == "" {
		return 0, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, scope, subject)
	raw, err := rateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return 0, 0, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return int(count), 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return int(count), retryAfter, nil
}

// ConsumeTransferRateLimit counts one transfer attempt for the sender.
// Returns allowed=false with a retry hint when the per-minute budget is
// exhausted. Limiter errors fail open: a Redis outage must not block money
// movement.
func (s *Service) ConsumeTransferRateLimit(ctx context.Context, identity *domain.Identity) (allowed bool, retryAfterSeconds int) {
	if s.limiter == nil || s.transferLimit <= 0 || identity == nil {
		return true, 0
	}
	count, retryAfter, err := s.limiter.ConsumeRateLimit(ctx, "transfer", identity.AccountNumber, s.transferLimit, time.Minute)
	if err != nil {
		log.Printf("level=warn component=app msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		return true, 0
	}
	if count > s.transferLimit {
		return false, retryAfter
	}
	return true, 0
}
