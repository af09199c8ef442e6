//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaxtrack/internal/catalog/models"
	"vaxtrack/internal/catalog/store"
	"vaxtrack/pkg/platform/sentinel"
	"vaxtrack/pkg/testutil"
	"vaxtrack/pkg/testutil/containers"
)

type CatalogStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redis    *containers.RedisContainer
	store    *store.PostgresStore
	cache    *store.RedisCache
}

func TestCatalogStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) SetupSuite() {
	s.postgres = containers.Postgres(s.T())
	s.redis = containers.Redis(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.cache = store.NewRedisCache(s.store, s.redis.Client, time.Minute)
}

func (s *CatalogStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateModuleTables(ctx))
	s.Require().NoError(s.redis.FlushAll(ctx))
}

func (s *CatalogStoreSuite) TestUpsertRoundTrip() {
	ctx := context.Background()
	v := testutil.NewVaccineBuilder().
		WithName("Hepatitis B").
		WithDoses(3).
		WithDoseOffsets(0, 42, 180).
		WithAgeRange(0, testutil.Ptr(216)).
		Build()
	s.Require().NoError(s.store.Upsert(ctx, v))

	got, err := s.store.FindByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal("Hepatitis B", got.Name)
	s.Equal([]int{0, 42, 180}, got.DoseOffsets)
	s.Require().NotNil(got.MaxAgeMonths)
	s.Equal(216, *got.MaxAgeMonths)
	s.Equal(3, got.DoseCount())
}

func (s *CatalogStoreSuite) TestUpsertByNameKeepsID() {
	ctx := context.Background()
	first := testutil.NewVaccineBuilder().WithName("BCG").Build()
	s.Require().NoError(s.store.Upsert(ctx, first))

	second := testutil.NewVaccineBuilder().WithName("BCG").WithWhenToGive("At birth").Build()
	s.Require().NoError(s.store.Upsert(ctx, second))
	s.Equal(first.ID, second.ID)

	got, err := s.store.FindByID(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("At birth", got.WhenToGive)
}

func (s *CatalogStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(context.Background(), testutil.TestIDs.VaccineID1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CatalogStoreSuite) TestListFilters() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, testutil.NewVaccineBuilder().WithName("BCG").Build()))
	s.Require().NoError(s.store.Upsert(ctx, testutil.NewVaccineBuilder().WithName("Measles").WithAgeRange(9, nil).Build()))
	s.Require().NoError(s.store.Upsert(ctx, testutil.NewVaccineBuilder().WithName("OPV").Inactive().Build()))

	active, err := s.store.List(ctx, models.ListFilter{ActiveOnly: true})
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal("BCG", active[0].Name)
	s.Equal("Measles", active[1].Name)

	early, err := s.store.List(ctx, models.ListFilter{ActiveOnly: true, MaxMinAgeDays: 30})
	s.Require().NoError(err)
	s.Len(early, 1)
}

func (s *CatalogStoreSuite) TestCacheServesAndInvalidates() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Upsert(ctx, testutil.NewVaccineBuilder().WithName("BCG").Build()))

	filter := models.ListFilter{ActiveOnly: true}
	first, err := s.cache.List(ctx, filter)
	s.Require().NoError(err)
	s.Len(first, 1)

	keys, err := s.redis.Client.Keys(ctx, "vaxtrack:catalog:list:*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1)

	// Written behind the cache's back: the cached listing is still served.
	s.Require().NoError(s.store.Upsert(ctx, testutil.NewVaccineBuilder().WithName("Measles").Build()))
	cached, err := s.cache.List(ctx, filter)
	s.Require().NoError(err)
	s.Len(cached, 1)

	s.Require().NoError(s.cache.Upsert(ctx, testutil.NewVaccineBuilder().WithName("OPV").Build()))
	fresh, err := s.cache.List(ctx, filter)
	s.Require().NoError(err)
	s.Len(fresh, 3)
}
