package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"vaxtrack/internal/catalog/seed"
	catalogstore "vaxtrack/internal/catalog/store"
	jwttoken "vaxtrack/internal/jwt_token"
	"vaxtrack/internal/platform/config"
	"vaxtrack/internal/platform/database"
	"vaxtrack/internal/platform/redis"
	scheduleservice "vaxtrack/internal/schedule/service"
	schedulestore "vaxtrack/internal/schedule/store"
	"vaxtrack/internal/schedule/workers/sweep"
	subjectservice "vaxtrack/internal/subject/service"
	subjectstore "vaxtrack/internal/subject/store"
	"vaxtrack/migrations"
	id "vaxtrack/pkg/domain"
)

const defaultTokenTTL = 15 * time.Minute

var errNoDatabase = errors.New("DATABASE_URL is required")

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.Pool, error) {
	pool, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, errNoDatabase
	}
	if err := pool.Migrate(ctx, migrations.FS); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}

func runSeed(ctx context.Context, cfg config.Server, log *slog.Logger, args []string) error {
	fs := pflag.NewFlagSet("seed", pflag.ExitOnError)
	file := fs.StringP("file", "f", "", "Catalog YAML file. Uses the embedded catalog if empty.")
	_ = fs.Parse(args)

	pool, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	var target seed.Store = catalogstore.NewPostgres(pool.DB())
	if client, err := redis.New(cfg.Redis); err != nil {
		log.Warn("redis unavailable, cached listings expire by TTL", "error", err)
	} else if client != nil {
		defer client.Close()
		target = catalogstore.NewRedisCache(catalogstore.NewPostgres(pool.DB()), client.Client, cfg.Redis.CatalogTTL,
			catalogstore.WithCacheLogger(log))
	}

	seeder := seed.New(target, log)
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		seeder = seeder.WithData(data)
	}

	n, err := seeder.SeedAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d vaccines\n", n)
	return nil
}

func runSweep(ctx context.Context, cfg config.Server, log *slog.Logger, args []string) error {
	fs := pflag.NewFlagSet("sweep", pflag.ExitOnError)
	batch := fs.Int("batch", cfg.Workers.StatusSweepBatch, "Subjects per page")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	pool, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := pool.DB()
	doses := schedulestore.NewPostgres(db)
	subjects := subjectservice.New(subjectstore.NewPostgres(db), subjectservice.WithLogger(log))
	svc := scheduleservice.New(doses, doses, subjects, catalogstore.NewPostgres(db),
		scheduleservice.WithLogger(log))

	res, err := sweep.New(svc, sweep.WithLogger(log), sweep.WithBatchSize(*batch)).RunOnce(ctx)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return printJSON(map[string]any{
			"subjects":    res.Subjects,
			"updated":     res.Updated,
			"failed":      res.Failed,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}
	fmt.Println("Status Sweep")
	fmt.Println("============")
	fmt.Printf("Subjects: %d\n", res.Subjects)
	fmt.Printf("Updated:  %d\n", res.Updated)
	fmt.Printf("Failed:   %d\n", res.Failed)
	fmt.Printf("Duration: %s\n", res.Duration)
	return nil
}

func runToken(ctx context.Context, cfg config.Server, args []string) error {
	fs := pflag.NewFlagSet("token", pflag.ExitOnError)
	userIDFlag := fs.String("user-id", "", "User ID (UUID). Generated if empty.")
	ttl := fs.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	userID := id.UserID(uuid.New())
	if *userIDFlag != "" {
		parsed, err := id.ParseUserID(*userIDFlag)
		if err != nil {
			return fmt.Errorf("invalid user-id %q: %w", *userIDFlag, err)
		}
		userID = parsed
	}

	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, *ttl)
	svc.SetEnv(cfg.Environment)
	token, err := svc.GenerateAccessToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	if *jsonOutput {
		return printJSON(map[string]any{
			"token":      token,
			"type":       "access_token",
			"expires_in": ttl.String(),
			"user_id":    userID.String(),
			"header":     "Authorization: Bearer <token>",
		})
	}
	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Environment: %s\n", cfg.Environment)
	fmt.Printf("Expires In:  %s\n", *ttl)
	fmt.Printf("User ID:     %s\n", userID)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/subjects")
	return nil
}
