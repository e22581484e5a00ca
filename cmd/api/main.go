package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/risick/microcredito-api/internal/auth"
	"github.com/risick/microcredito-api/internal/config"
	"github.com/risick/microcredito-api/internal/db"
	"github.com/risick/microcredito-api/internal/domain/admin"
	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
	loandomain "github.com/risick/microcredito-api/internal/domain/loan"
	paymentdomain "github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/observability"
	postgresrepo "github.com/risick/microcredito-api/internal/repository/postgres"
	"github.com/risick/microcredito-api/internal/server"
	"github.com/risick/microcredito-api/internal/ws"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, cfg.DatabaseURL, db.MigrateUp); err != nil {
			logger.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgresrepo.NewUserRepository(pool)
	sessionRepo := db.NewSessionRepository(pool)
	auditRepo := postgresrepo.NewAuditRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	paymentRepo := postgresrepo.NewPaymentRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
	authService := auth.NewService(userRepo, sessionRepo, auditRepo, jwtManager, cfg.BcryptRounds, cfg.JWTExpiresIn, cfg.JWTRefreshExpiresIn)
	borrowerService := borrowerdomain.NewService(
		postgresrepo.NewBorrowerRepository(pool),
		userRepo,
		postgresrepo.NewOutboxRepository(pool),
		auditRepo,
	)

	hub := ws.NewHub()
	notifier := ws.NewNotifier(postgresrepo.NewWSRepository(pool), hub, cfg.WSPollInterval)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:          pool,
		AuthService:     authService,
		UserService:     admin.NewService(userRepo, sessionRepo, auditRepo),
		BorrowerService: borrowerService,
		LoanService:     loandomain.NewService(loanRepo, paymentRepo),
		PaymentService:  paymentdomain.NewService(paymentRepo),
		WSHandler:       ws.NewHandler(hub),
		JWTManager:      jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := notifier.Run(sigCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("realtime notifier stopped", "err", err)
		}
	}()

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
