package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vaxtrack/internal/catalog/metrics"
	"vaxtrack/internal/catalog/models"
	"vaxtrack/internal/platform/tracer"
	id "vaxtrack/pkg/domain"
	"vaxtrack/pkg/platform/circuit"
)

const redisListKeyPrefix = "vaxtrack:catalog:list:"

// Primary is the authoritative catalog behind the cache.
type Primary interface {
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vaccine, error)
	FindByID(ctx context.Context, vaccineID id.VaccineID) (*models.Vaccine, error)
	Upsert(ctx context.Context, v *models.Vaccine) error
}

// RedisCache is a read-through cache for catalog listings. Redis failures
// never fail a read: the primary store answers and the breaker keeps
// requests off Redis until a probe succeeds.
type RedisCache struct {
	primary Primary
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

// CacheOption configures a RedisCache.
type CacheOption func(*RedisCache)

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *RedisCache) { c.metrics = m }
}

func WithCacheTracer(t tracer.Tracer) CacheOption {
	return func(c *RedisCache) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *RedisCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBreaker replaces the default breaker (5 failures open, 5s cooldown).
func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(c *RedisCache) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewRedisCache wraps primary with a Redis-backed listing cache.
func NewRedisCache(primary Primary, client redis.Cmdable, ttl time.Duration, opts ...CacheOption) *RedisCache {
	c := &RedisCache{
		primary: primary,
		client:  client,
		ttl:     ttl,
		breaker: circuit.New("catalog_cache"),
		tracer:  tracer.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List serves a cached listing when present, otherwise loads from the
// primary store and populates the cache.
func (c *RedisCache) List(ctx context.Context, filter models.ListFilter) (_ []*models.Vaccine, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCatalogList)
	defer func() { span.End(err) }()

	key := listKey(filter)
	useCache := c.breaker.Allow()
	if useCache {
		if cached, ok := c.get(ctx, key); ok {
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true), tracer.Int(tracer.AttrVaccineCount, len(cached)))
			return cached, nil
		}
	}

	vaccines, err := c.primary.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false), tracer.Int(tracer.AttrVaccineCount, len(vaccines)))
	if useCache {
		c.set(ctx, key, vaccines)
	}
	return vaccines, nil
}

// FindByID reads through to the primary store.
func (c *RedisCache) FindByID(ctx context.Context, vaccineID id.VaccineID) (*models.Vaccine, error) {
	return c.primary.FindByID(ctx, vaccineID)
}

// Upsert writes to the primary store and drops every cached listing.
func (c *RedisCache) Upsert(ctx context.Context, v *models.Vaccine) error {
	if err := c.primary.Upsert(ctx, v); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate removes all cached listings. Failures are logged; entries then
// age out through their TTL.
func (c *RedisCache) Invalidate(ctx context.Context) {
	var keys []string
	iter := c.client.Scan(ctx, 0, redisListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	if err == nil && len(keys) > 0 {
		err = c.client.Del(ctx, keys...).Err()
	}
	if err != nil {
		c.recordFailure(ctx, "invalidate", err)
		c.logger.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
		return
	}
	c.recordSuccess(ctx)
	c.metrics.RecordInvalidation()
}

func (c *RedisCache) get(ctx context.Context, key string) ([]*models.Vaccine, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.recordSuccess(ctx)
			c.metrics.RecordMiss()
			return nil, false
		}
		c.recordFailure(ctx, "get", err)
		return nil, false
	}
	c.recordSuccess(ctx)

	var entries []cachedVaccine
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable catalog cache entry", "key", key, "error", err)
		c.metrics.RecordMiss()
		return nil, false
	}
	out := make([]*models.Vaccine, len(entries))
	for i := range entries {
		v, err := entries[i].toModel()
		if err != nil {
			c.logger.WarnContext(ctx, "discarding catalog cache entry with invalid id", "key", key, "error", err)
			c.metrics.RecordMiss()
			return nil, false
		}
		out[i] = v
	}
	c.metrics.RecordHit()
	return out, true
}

func (c *RedisCache) set(ctx context.Context, key string, vaccines []*models.Vaccine) {
	entries := make([]cachedVaccine, len(vaccines))
	for i, v := range vaccines {
		entries[i] = fromModel(v)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		c.logger.WarnContext(ctx, "encode catalog cache entry failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.recordFailure(ctx, "set", err)
		return
	}
	c.recordSuccess(ctx)
}

func (c *RedisCache) recordFailure(ctx context.Context, operation string, err error) {
	c.metrics.RecordError(operation)
	if c.breaker.Failure() == circuit.Opened {
		c.metrics.SetCircuitOpen(true)
		c.logger.ErrorContext(ctx, "circuit breaker opened", "circuit", c.breaker.Name(), "error", err)
	}
}

func (c *RedisCache) recordSuccess(ctx context.Context) {
	if c.breaker.Success() == circuit.Recovered {
		c.metrics.SetCircuitOpen(false)
		c.logger.InfoContext(ctx, "circuit breaker closed", "circuit", c.breaker.Name())
	}
}

func listKey(f models.ListFilter) string {
	return fmt.Sprintf("%s%t:%s:%s:%d", redisListKeyPrefix, f.ActiveOnly, f.Type, f.Category, f.MaxMinAgeDays)
}

// cachedVaccine is the Redis representation; typed IDs are stored as strings.
type cachedVaccine struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	TotalDoses   *int      `json:"total_doses,omitempty"`
	Frequency    string    `json:"frequency"`
	WhenToGive   string    `json:"when_to_give"`
	MinAgeMonths int       `json:"min_age_months"`
	MaxAgeMonths *int      `json:"max_age_months,omitempty"`
	DoseOffsets  []int     `json:"dose_offsets,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func fromModel(v *models.Vaccine) cachedVaccine {
	return cachedVaccine{
		ID:           v.ID.String(),
		Name:         v.Name,
		Type:         string(v.Type),
		Category:     v.Category,
		TotalDoses:   v.TotalDoses,
		Frequency:    v.Frequency,
		WhenToGive:   v.WhenToGive,
		MinAgeMonths: v.MinAgeMonths,
		MaxAgeMonths: v.MaxAgeMonths,
		DoseOffsets:  v.DoseOffsets,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func (c cachedVaccine) toModel() (*models.Vaccine, error) {
	vaccineID, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, err
	}
	return &models.Vaccine{
		ID:           id.VaccineID(vaccineID),
		Name:         c.Name,
		Type:         models.VaccineType(c.Type),
		Category:     c.Category,
		TotalDoses:   c.TotalDoses,
		Frequency:    c.Frequency,
		WhenToGive:   c.WhenToGive,
		MinAgeMonths: c.MinAgeMonths,
		MaxAgeMonths: c.MaxAgeMonths,
		DoseOffsets:  c.DoseOffsets,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}
