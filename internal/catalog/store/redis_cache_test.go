package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxtrack/internal/catalog/models"
	"vaxtrack/pkg/platform/circuit"
	"vaxtrack/pkg/testutil"
)

type countingPrimary struct {
	*InMemory
	lists int
}

func (p *countingPrimary) List(ctx context.Context, filter models.ListFilter) ([]*models.Vaccine, error) {
	p.lists++
	return p.InMemory.List(ctx, filter)
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCacheFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	primary := &countingPrimary{InMemory: NewInMemory()}
	require.NoError(t, primary.Upsert(ctx, testutil.NewVaccineBuilder().WithName("BCG").Build()))

	breaker := circuit.New("catalog_cache_test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	cache := NewRedisCache(primary, unreachableRedis(t), time.Minute,
		WithBreaker(breaker),
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	for range 3 {
		vaccines, err := cache.List(ctx, models.ListFilter{ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, vaccines, 1)
		assert.Equal(t, "BCG", vaccines[0].Name)
	}

	assert.Equal(t, 3, primary.lists)
	assert.Equal(t, circuit.Open, breaker.State())
}

func TestRedisCacheUpsertSucceedsWithoutRedis(t *testing.T) {
	ctx := context.Background()
	primary := &countingPrimary{InMemory: NewInMemory()}
	cache := NewRedisCache(primary, unreachableRedis(t), time.Minute,
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	v := testutil.NewVaccineBuilder().WithName("Measles").Build()
	require.NoError(t, cache.Upsert(ctx, v))

	got, err := cache.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Measles", got.Name)
}

func TestListKeyDistinguishesFilters(t *testing.T) {
	a := listKey(models.ListFilter{ActiveOnly: true})
	b := listKey(models.ListFilter{ActiveOnly: true, Type: models.VaccineTypeOptional})
	c := listKey(models.ListFilter{ActiveOnly: true, MaxMinAgeDays: 730})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, redisListKeyPrefix)
}
