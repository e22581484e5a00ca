package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/risick/microcredito-api/internal/config"
	"github.com/risick/microcredito-api/internal/db"
	"github.com/risick/microcredito-api/internal/observability"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = db.MigrateUp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, cfg.DatabaseURL, command); err != nil {
		logger.Error("migration failed", "command", command, "err", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", command)
}
