package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/risick/microcredito-api/internal/config"
	"github.com/risick/microcredito-api/internal/db"
	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/jobs"
	"github.com/risick/microcredito-api/internal/observability"
	postgresrepo "github.com/risick/microcredito-api/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	borrowers := borrowerdomain.NewService(
		postgresrepo.NewBorrowerRepository(pool),
		postgresrepo.NewUserRepository(pool),
		outboxRepo,
		postgresrepo.NewAuditRepository(pool),
	)
	worker := jobs.NewWorker(outboxRepo, borrowers, logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "interval", cfg.WorkerPollInterval.String(), "batch_size", cfg.WorkerBatchSize)
	if err := worker.Run(sigCtx, cfg.WorkerPollInterval, cfg.WorkerBatchSize); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
