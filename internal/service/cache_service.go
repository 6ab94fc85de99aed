package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/pkg/redis"
)

// CacheService provides cache-aside reads for the per-year reference data.
// A nil CacheService, or one without a redis client, always reads through.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

func (c *CacheService) enabled() bool {
	return c != nil && c.redis != nil
}

// getJSON reads key into dest, reporting whether it was a usable hit
func (c *CacheService) getJSON(ctx context.Context, key string, dest interface{}) bool {
	cached, err := c.redis.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache error, falling back to database", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.logger.Warn("Cache corrupted, falling back to database", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Failed to marshal value for caching", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Error("Failed to cache value", zap.String("key", key), zap.Error(err))
	}
}

// GetAwardCycleWithCache reads the cycle of year from cache, falling back to dbFallback.
// Missing cycles are not cached.
func (c *CacheService) GetAwardCycleWithCache(ctx context.Context, year int, dbFallback func(ctx context.Context, year int) (*domain.AwardCycle, error)) (*domain.AwardCycle, error) {
	if !c.enabled() {
		return dbFallback(ctx, year)
	}

	key := c.redis.KeyBuilder.KeyAwardCycle(year)
	var cycle domain.AwardCycle
	if c.getJSON(ctx, key, &cycle) && cycle.Phase.Valid() {
		c.logger.Debug("Award cycle cache hit", zap.Int("year", year))
		return &cycle, nil
	}

	c.logger.Debug("Award cycle cache miss", zap.Int("year", year))
	found, err := dbFallback(ctx, year)
	if err != nil {
		return nil, err
	}
	if found != nil {
		c.setJSON(ctx, key, found, redis.TTLAwardCycle)
	}
	return found, nil
}

// GetCategoriesWithCache reads the categories of year from cache, falling back to dbFallback
func (c *CacheService) GetCategoriesWithCache(ctx context.Context, year int, dbFallback func(ctx context.Context, year int) ([]*domain.Category, error)) ([]*domain.Category, error) {
	if !c.enabled() {
		return dbFallback(ctx, year)
	}

	key := c.redis.KeyBuilder.KeyCategories(year)
	var categories []*domain.Category
	if c.getJSON(ctx, key, &categories) {
		c.logger.Debug("Categories cache hit", zap.Int("year", year))
		return categories, nil
	}

	c.logger.Debug("Categories cache miss", zap.Int("year", year))
	categories, err := dbFallback(ctx, year)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	c.setJSON(ctx, key, categories, redis.TTLCategories)
	return categories, nil
}

// InvalidateAwardCycle drops the cached cycle of year
func (c *CacheService) InvalidateAwardCycle(ctx context.Context, year int) error {
	if !c.enabled() {
		return nil
	}
	return c.redis.Delete(ctx, c.redis.KeyBuilder.KeyAwardCycle(year))
}

// InvalidateCategories drops the cached categories of every year
func (c *CacheService) InvalidateCategories(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.redis.InvalidatePattern(ctx, c.redis.KeyBuilder.KeyCategoriesPattern())
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

// cachedAwardCycles reads cycles through the cache
type cachedAwardCycles struct {
	repository.AwardCycleRepository
	cache *CacheService
}

func (r *cachedAwardCycles) GetByYear(ctx context.Context, year int) (*domain.AwardCycle, error) {
	return r.cache.GetAwardCycleWithCache(ctx, year, r.AwardCycleRepository.GetByYear)
}

func (r *cachedAwardCycles) Upsert(ctx context.Context, cycle *domain.AwardCycle) error {
	if err := r.AwardCycleRepository.Upsert(ctx, cycle); err != nil {
		return err
	}
	if err := r.cache.InvalidateAwardCycle(ctx, cycle.Year); err != nil {
		r.cache.logger.Warn("Failed to invalidate award cycle", zap.Int("year", cycle.Year), zap.Error(err))
	}
	return nil
}

// cachedCategories reads per-year category lists through the cache
type cachedCategories struct {
	repository.CategoryRepository
	cache *CacheService
}

func (r *cachedCategories) ListByYear(ctx context.Context, year int) ([]*domain.Category, error) {
	return r.cache.GetCategoriesWithCache(ctx, year, r.CategoryRepository.ListByYear)
}

func (r *cachedCategories) Create(ctx context.Context, category *domain.Category) error {
	if err := r.CategoryRepository.Create(ctx, category); err != nil {
		return err
	}
	if err := r.cache.InvalidateCategories(ctx); err != nil {
		r.cache.logger.Warn("Failed to invalidate categories", zap.Error(err))
	}
	return nil
}

// WithCache returns a copy of repos whose cycle and category reads go through c
func (c *CacheService) WithCache(repos *repository.Repositories) *repository.Repositories {
	if !c.enabled() {
		return repos
	}
	wrapped := *repos
	wrapped.AwardCycles = &cachedAwardCycles{AwardCycleRepository: repos.AwardCycles, cache: c}
	wrapped.Categories = &cachedCategories{CategoryRepository: repos.Categories, cache: c}
	return &wrapped
}
