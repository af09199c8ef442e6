package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      slog.Level
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	SeedCatalog   bool

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Workers  WorkerConfig
}

// DatabaseConfig selects Postgres storage. An empty URL keeps every store in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the catalog cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CatalogTTL   time.Duration
}

// KafkaConfig configures domain event publishing. Empty brokers select the noop publisher.
type KafkaConfig struct {
	Brokers         string
	Topic           string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// WorkerConfig configures background workers.
type WorkerConfig struct {
	StatusSweepInterval time.Duration
	StatusSweepBatch    int
}

// CatalogCacheTTL bounds how stale a cached catalog listing may be.
var CatalogCacheTTL = 10 * time.Minute

// StatusSweepInterval is how often the sweep worker re-synchronizes pending doses.
var StatusSweepInterval = time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VAXTRACK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		Environment:   env,
		LogLevel:      parseLevel(os.Getenv("LOG_LEVEL")),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("JWT_ISSUER", "vaxtrack"),
		JWTAudience:   envOr("JWT_AUDIENCE", "vaxtrack-api"),
		SeedCatalog:   envBool("SEED_CATALOG", env == "dev"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CatalogTTL:   envDuration("CATALOG_CACHE_TTL", CatalogCacheTTL),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			Topic:           envOr("KAFKA_TOPIC", "vaxtrack.events"),
			Acks:            envOr("KAFKA_ACKS", "all"),
			Retries:         3,
			DeliveryTimeout: 30 * time.Second,
		},
		Workers: WorkerConfig{
			StatusSweepInterval: envDuration("STATUS_SWEEP_INTERVAL", StatusSweepInterval),
			StatusSweepBatch:    envInt("STATUS_SWEEP_BATCH", 100),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

// envDuration accepts Go duration strings; zero or invalid values keep the fallback.
func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
