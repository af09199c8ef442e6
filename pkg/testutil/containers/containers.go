//go:build integration

// Package containers starts the Postgres, Redis and Redpanda instances used by
// integration tests. Each one is started at most once per test binary and
// shared by every suite in the package; Ryuk removes them on exit.
package containers

import (
	"context"
	"sync"
	"testing"
	"time"
)

const startTimeout = 2 * time.Minute

var (
	sharedPostgres = sync.OnceValues(func() (*PostgresContainer, error) {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		return startPostgres(ctx)
	})
	sharedRedis = sync.OnceValues(func() (*RedisContainer, error) {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		return startRedis(ctx)
	})
	sharedKafka = sync.OnceValues(func() (*KafkaContainer, error) {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		return startKafka(ctx)
	})
)

// Postgres returns the shared, migrated database. It fails t when the
// container could not be started; later callers see the same failure.
func Postgres(t testing.TB) *PostgresContainer {
	t.Helper()
	return must(t, "postgres", sharedPostgres)
}

func Redis(t testing.TB) *RedisContainer {
	t.Helper()
	return must(t, "redis", sharedRedis)
}

// Kafka returns a Redpanda broker; it speaks the Kafka protocol.
func Kafka(t testing.TB) *KafkaContainer {
	t.Helper()
	return must(t, "redpanda", sharedKafka)
}

func must[T any](t testing.TB, name string, get func() (T, error)) T {
	t.Helper()
	v, err := get()
	if err != nil {
		t.Fatalf("start %s container: %v", name, err)
	}
	return v
}
