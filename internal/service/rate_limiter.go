package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenblog/auth-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window log limiter backed by Redis sorted sets,
// used to slow down credential guessing on the sign-in and register routes.
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow records one request under key and reports whether it fits the limit
// within the window. RetryAfter is non-zero only when the request is denied.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", now.Add(-window).Unix())).Err(); err != nil {
		return false, 0, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count rate limit entries: %w", err)
	}

	if count >= int64(limit) {
		retryAfter := window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.Unix(int64(oldest[0].Score), 0)
			retryAfter = window - time.Since(oldestTime)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return false, retryAfter, nil
	}

	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	}).Err()
	if err != nil {
		return false, 0, fmt.Errorf("failed to record rate limit entry: %w", err)
	}

	// Keep the key alive slightly past the window so trimming stays cheap.
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return true, 0, nil
}

// Remaining returns how many requests are left in the current window.
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", time.Now().Add(-window).Unix())).Err(); err != nil {
		return 0, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit entries: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
