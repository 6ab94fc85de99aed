package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mca-api/internal/domain"
	"mca-api/pkg/logger"
	"mca-api/pkg/redis"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *redis.Client, *CacheService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client, NewCacheService(client, zap.NewNop())
}

func TestCacheService_AwardCycle(t *testing.T) {
	mr, client, cache := setupCache(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context, year int) (*domain.AwardCycle, error) {
		calls++
		return &domain.AwardCycle{Year: year, Phase: domain.PhaseNomination}, nil
	}

	first, err := cache.GetAwardCycleWithCache(ctx, 2023, fallback)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseNomination, first.Phase)
	assert.True(t, mr.Exists(client.KeyBuilder.KeyAwardCycle(2023)))
	assert.Equal(t, redis.TTLAwardCycle, mr.TTL(client.KeyBuilder.KeyAwardCycle(2023)))

	second, err := cache.GetAwardCycleWithCache(ctx, 2023, fallback)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second read is a cache hit")

	mr.FastForward(redis.TTLAwardCycle)
	_, err = cache.GetAwardCycleWithCache(ctx, 2023, fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entries read through")
}

func TestCacheService_MissingCycleNotCached(t *testing.T) {
	mr, client, cache := setupCache(t)

	got, err := cache.GetAwardCycleWithCache(context.Background(), 2019,
		func(context.Context, int) (*domain.AwardCycle, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(client.KeyBuilder.KeyAwardCycle(2019)))
}

func TestCacheService_CorruptedEntry(t *testing.T) {
	mr, client, cache := setupCache(t)
	require.NoError(t, mr.Set(client.KeyBuilder.KeyCategories(2023), "{not json"))

	got, err := cache.GetCategoriesWithCache(context.Background(), 2023,
		func(context.Context, int) ([]*domain.Category, error) {
			return []*domain.Category{{ID: 1, Year: 2023, Name: "Grand Award"}}, nil
		})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Grand Award", got[0].Name)
}

func TestCacheService_FallbackError(t *testing.T) {
	_, _, cache := setupCache(t)
	boom := errors.New("db down")

	_, err := cache.GetCategoriesWithCache(context.Background(), 2023,
		func(context.Context, int) ([]*domain.Category, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCacheService_WithCacheInvalidatesOnWrite(t *testing.T) {
	mr, client, cache := setupCache(t)
	fx := newFixture(t)
	ctx := context.Background()

	repos := cache.WithCache(fx.store.Repositories())

	cats, err := repos.Categories.ListByYear(ctx, 2023)
	require.NoError(t, err)
	assert.Len(t, cats, 4)
	assert.True(t, mr.Exists(client.KeyBuilder.KeyCategories(2023)))

	require.NoError(t, repos.Categories.Create(ctx, &domain.Category{Year: 2023, Name: "New", Type: domain.CategoryTypeUsers,
		Mode: domain.ModeMania, MaxNominations: 1}))
	assert.False(t, mr.Exists(client.KeyBuilder.KeyCategories(2023)))

	cats, err = repos.Categories.ListByYear(ctx, 2023)
	require.NoError(t, err)
	assert.Len(t, cats, 5)

	cycle, err := repos.AwardCycles.GetByYear(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseNomination, cycle.Phase)

	require.NoError(t, repos.AwardCycles.Upsert(ctx, &domain.AwardCycle{Year: 2023, Phase: domain.PhaseVoting}))
	cycle, err = repos.AwardCycles.GetByYear(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseVoting, cycle.Phase, "phase change is visible immediately")
}

func TestCacheService_NilIsReadThrough(t *testing.T) {
	var cache *CacheService
	calls := 0

	_, err := cache.GetAwardCycleWithCache(context.Background(), 2023,
		func(context.Context, int) (*domain.AwardCycle, error) {
			calls++
			return &domain.AwardCycle{Year: 2023, Phase: domain.PhasePending}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, cache.HealthCheck(context.Background()))
	assert.NoError(t, cache.InvalidateCategories(context.Background()))
}

func TestRateLimiter_Check(t *testing.T) {
	mr, client, _ := setupCache(t)
	limiter := NewRateLimiter(client, 3, logger.NewNop())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		info, err := limiter.Check(ctx, 7, "nominating")
		require.NoError(t, err)
		assert.True(t, info.IsAllowed, "request %d", i)
		assert.Equal(t, int64(i), info.RequestCount)
	}

	info, err := limiter.Check(ctx, 7, "nominating")
	require.NoError(t, err)
	assert.False(t, info.IsAllowed)
	assert.Equal(t, redis.TTLRateLimit, info.ResetIn)

	other, err := limiter.Check(ctx, 8, "nominating")
	require.NoError(t, err)
	assert.True(t, other.IsAllowed, "counters are per user")

	mr.FastForward(redis.TTLRateLimit)
	info, err = limiter.Check(ctx, 7, "nominating")
	require.NoError(t, err)
	assert.True(t, info.IsAllowed, "window resets")
}

func TestRateLimiter_WithoutRedis(t *testing.T) {
	limiter := NewRateLimiter(nil, 1, nil)

	for i := 0; i < 5; i++ {
		info, err := limiter.Check(context.Background(), 1, "nominating")
		require.NoError(t, err)
		assert.True(t, info.IsAllowed)
	}
}

func TestRateLimiter_CounterWithoutExpiryRecovers(t *testing.T) {
	mr, client, _ := setupCache(t)
	limiter := NewRateLimiter(client, 3, logger.NewNop())
	ctx := context.Background()

	key := client.KeyBuilder.KeyRateLimitUser(7, "nominating")
	require.NoError(t, mr.Set(key, "10"))

	info, err := limiter.Check(ctx, 7, "nominating")
	require.NoError(t, err)
	assert.False(t, info.IsAllowed)
	assert.Equal(t, redis.TTLRateLimit, mr.TTL(key), "expiry is restored on the next hit")

	mr.FastForward(redis.TTLRateLimit)
	info, err = limiter.Check(ctx, 7, "nominating")
	require.NoError(t, err)
	assert.True(t, info.IsAllowed)
	assert.Equal(t, int64(1), info.RequestCount)
}
