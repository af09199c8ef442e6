package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cataloghandler "vaxtrack/internal/catalog/handler"
	catalogmetrics "vaxtrack/internal/catalog/metrics"
	"vaxtrack/internal/catalog/seed"
	catalogstore "vaxtrack/internal/catalog/store"
	"vaxtrack/internal/events"
	jwttoken "vaxtrack/internal/jwt_token"
	plannerhandler "vaxtrack/internal/planner/handler"
	plannermetrics "vaxtrack/internal/planner/metrics"
	plannerservice "vaxtrack/internal/planner/service"
	plannerstore "vaxtrack/internal/planner/store"
	"vaxtrack/internal/platform/config"
	"vaxtrack/internal/platform/database"
	"vaxtrack/internal/platform/health"
	"vaxtrack/internal/platform/kafka"
	"vaxtrack/internal/platform/kafka/producer"
	platformmetrics "vaxtrack/internal/platform/metrics"
	"vaxtrack/internal/platform/redis"
	"vaxtrack/internal/platform/tracer"
	schedulehandler "vaxtrack/internal/schedule/handler"
	schedulemetrics "vaxtrack/internal/schedule/metrics"
	scheduleservice "vaxtrack/internal/schedule/service"
	schedulestore "vaxtrack/internal/schedule/store"
	"vaxtrack/internal/schedule/workers/sweep"
	subjecthandler "vaxtrack/internal/subject/handler"
	subjectservice "vaxtrack/internal/subject/service"
	subjectstore "vaxtrack/internal/subject/store"
	httptransport "vaxtrack/internal/transport/http"
	"vaxtrack/migrations"
	"vaxtrack/pkg/platform/middleware/request"
)

const (
	statsInterval        = 15 * time.Second
	accessTokenTTL       = time.Hour
	eventTopicPartitions = 3
)

type eventProducer interface {
	events.Producer
	Close() error
}

type app struct {
	router  http.Handler
	sweep   *sweep.Worker
	pool    *database.Pool
	redis   *redis.Client
	events  eventProducer
	metrics *platformmetrics.Metrics
	logger  *slog.Logger
}

// stores groups the persistence layer; Postgres when configured, memory otherwise.
type stores struct {
	catalog   catalogstore.Primary
	subjects  subjectservice.Store
	doses     *doseStores
	planner   plannerservice.Store
	schedTx   scheduleservice.ScheduleTx
	plannerTx plannerservice.PlannerTx
}

type doseStores struct {
	scheduleservice.DoseStore
	scheduleservice.ReminderStore
}

func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{logger: log, metrics: platformmetrics.New()}
	a.metrics.SetBuildInfo(cfg.Environment)

	healthHandler := health.New(cfg.Environment)
	tr := tracer.NewOTel()

	pool, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	var st stores
	if pool != nil {
		if err := pool.Migrate(ctx, migrations.FS); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		healthHandler.RegisterCheck("postgres", pool.Health)
		st = postgresStores(pool.DB())
		log.Info("using postgres stores")
	} else {
		st = memoryStores()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	catalog := st.catalog
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		a.redis = redisClient
		healthHandler.RegisterOptionalCheck("redis", redisClient.Health)
		prometheus.MustRegister(redis.NewPoolCollector(redisClient))
		catalog = catalogstore.NewRedisCache(st.catalog, redisClient.Client, cfg.Redis.CatalogTTL,
			catalogstore.WithCacheMetrics(catalogmetrics.New()),
			catalogstore.WithCacheTracer(tr),
			catalogstore.WithCacheLogger(log),
		)
	}

	if cfg.SeedCatalog {
		n, err := seed.New(catalog, log).SeedAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", "vaccines", n)
	}

	a.events, err = newEventProducer(ctx, cfg.Kafka, healthHandler, log)
	if err != nil {
		return nil, err
	}
	publisher := events.NewPublisher(a.events, events.WithMetrics(a.metrics), events.WithLogger(log))

	subjectSvc := subjectservice.New(st.subjects, subjectservice.WithLogger(log))

	schedMetrics := schedulemetrics.New()
	scheduleOpts := []scheduleservice.Option{
		scheduleservice.WithLogger(log),
		scheduleservice.WithMetrics(schedMetrics),
		scheduleservice.WithTracer(tr),
		scheduleservice.WithPublisher(publisher),
	}
	if st.schedTx != nil {
		scheduleOpts = append(scheduleOpts, scheduleservice.WithTx(st.schedTx))
	}
	scheduleSvc := scheduleservice.New(st.doses, st.doses, subjectSvc, catalog, scheduleOpts...)

	plannerOpts := []plannerservice.Option{
		plannerservice.WithLogger(log),
		plannerservice.WithMetrics(plannermetrics.New()),
		plannerservice.WithTracer(tr),
		plannerservice.WithPublisher(publisher),
	}
	if st.plannerTx != nil {
		plannerOpts = append(plannerOpts, plannerservice.WithTx(st.plannerTx))
	}
	plannerSvc := plannerservice.New(st.planner, subjectSvc, catalog, st.doses, plannerOpts...)

	a.sweep = sweep.New(scheduleSvc,
		sweep.WithLogger(log),
		sweep.WithInterval(cfg.Workers.StatusSweepInterval),
		sweep.WithBatchSize(cfg.Workers.StatusSweepBatch),
		sweep.WithMetrics(schedMetrics),
		sweep.WithTracer(tr),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, accessTokenTTL)

	a.router = httptransport.NewRouter(httptransport.Dependencies{
		Logger:    log,
		Verifier:  jwtService,
		Health:    healthHandler,
		Latency:   request.NewMetrics(),
		Public: []httptransport.Registrar{
			cataloghandler.New(catalog, log),
		},
		Protected: []httptransport.Registrar{
			subjecthandler.New(subjectSvc, log),
			schedulehandler.New(scheduleSvc, log),
			plannerhandler.New(plannerSvc, log),
		},
	})
	return a, nil
}

func postgresStores(db *sql.DB) stores {
	doses := schedulestore.NewPostgres(db)
	tx := newSubjectPostgresTx(db)
	return stores{
		catalog:   catalogstore.NewPostgres(db),
		subjects:  subjectstore.NewPostgres(db),
		doses:     &doseStores{DoseStore: doses, ReminderStore: doses},
		planner:   plannerstore.NewPostgres(db),
		schedTx:   tx,
		plannerTx: tx,
	}
}

func memoryStores() stores {
	doses := schedulestore.NewInMemory()
	return stores{
		catalog:  catalogstore.NewInMemory(),
		subjects: subjectstore.NewInMemory(),
		doses:    &doseStores{DoseStore: doses, ReminderStore: doses},
		planner:  plannerstore.NewInMemory(),
	}
}

func newEventProducer(ctx context.Context, cfg config.KafkaConfig, h *health.Handler, log *slog.Logger) (eventProducer, error) {
	if cfg.Brokers == "" {
		log.Info("KAFKA_BROKERS not set, domain events are discarded")
		return producer.NewNoopProducer(), nil
	}
	if err := kafka.EnsureTopic(ctx, cfg.Brokers, cfg.Topic, eventTopicPartitions, 1); err != nil {
		log.Warn("ensure events topic failed", "topic", cfg.Topic, "error", err)
	}
	prod, err := producer.New(cfg, log)
	if err != nil {
		return nil, err
	}
	h.RegisterOptionalCheck("kafka", prod.Ping)
	return prod, nil
}

func (a *app) startWorkers(ctx context.Context) {
	go func() {
		if err := a.sweep.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("status sweep worker stopped", "error", err)
		}
	}()
	if a.pool != nil {
		go func() {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					a.metrics.RecordDBStats(a.pool.Stats())
				}
			}
		}()
	}
}

func (a *app) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("close event producer", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
}
