// Package main provides vaxctl, an operator CLI for seeding the vaccine
// catalog, running a one-off status sweep, and minting development tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vaxtrack/internal/platform/config"
	"vaxtrack/internal/platform/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed(ctx, cfg, log, os.Args[2:])
	case "sweep":
		err = runSweep(ctx, cfg, log, os.Args[2:])
	case "token":
		err = runToken(ctx, cfg, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vaxctl - Operate a vaxtrack deployment

Usage:
  vaxctl <command> [flags]

Commands:
  seed      Upsert the vaccine catalog into Postgres
  sweep     Synchronize dose statuses for every subject once
  token     Mint a development access token (JWT)

Examples:
  # Seed the embedded catalog
  DATABASE_URL=postgres://... vaxctl seed

  # Seed from a custom catalog file
  vaxctl seed --file ./vaccines.yaml

  # Run the status sweep with larger pages
  vaxctl sweep --batch 500

  # Mint a token for a known user
  vaxctl token --user-id 550e8400-e29b-41d4-a716-446655440000 --ttl 1h

Configuration is read from the same environment variables as the server.
Use "vaxctl <command> --help" for more information about a command.`)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
