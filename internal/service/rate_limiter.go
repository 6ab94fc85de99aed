package service

import (
	"context"
	"fmt"
	"time"

	"mca-api/internal/domain"
	"mca-api/pkg/logger"
	"mca-api/pkg/redis"
)

// RateLimiter is a fixed-window per-user request counter kept in redis
type RateLimiter struct {
	redisClient *redis.Client
	limit       int64
	window      time.Duration
	logger      *logger.Logger
}

func NewRateLimiter(redisClient *redis.Client, limit int, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.NewNop()
	}
	return &RateLimiter{
		redisClient: redisClient,
		limit:       int64(limit),
		window:      redis.TTLRateLimit,
		logger:      log,
	}
}

// Check counts one request of userID against group. Without redis every request is allowed.
func (r *RateLimiter) Check(ctx context.Context, userID int, group string) (*domain.RateLimitInfo, error) {
	info := &domain.RateLimitInfo{UserID: userID, Group: group, Limit: r.limitOrZero(), IsAllowed: true}
	if r == nil || r.redisClient == nil || r.limit <= 0 {
		return info, nil
	}

	key := r.redisClient.KeyBuilder.KeyRateLimitUser(userID, group)

	count, ttl, err := r.redisClient.IncrWindow(ctx, key, r.window)
	if err != nil && count == 0 {
		return info, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if err != nil {
		r.logger.WithError(err).Warn("Failed to set rate limit key expiry")
	}

	info.RequestCount = count
	info.ResetIn = ttl
	info.IsAllowed = count <= r.limit
	return info, nil
}

func (r *RateLimiter) limitOrZero() int64 {
	if r == nil {
		return 0
	}
	return r.limit
}
