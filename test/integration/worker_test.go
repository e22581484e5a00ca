package integration

import (
	"context"
	"log/slog"
	"testing"
	"time"

	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/jobs"
	postgresrepo "github.com/risick/microcredito-api/internal/repository/postgres"
	"github.com/risick/microcredito-api/test/integration/testutil"
	"github.com/shopspring/decimal"
)

func TestWorkerProcessesRescoreOutboxJob(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	userRepo := postgresrepo.NewUserRepository(pool)
	borrowerRepo := postgresrepo.NewBorrowerRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	auditRepo := postgresrepo.NewAuditRepository(pool)

	owner, err := userRepo.Create(ctx, userdomain.CreateInput{Email: "worker@example.com", PasswordHash: "x", Name: "Worker Owner"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	stale := int32(1)
	created, err := borrowerRepo.Create(ctx, borrowerdomain.CreateInput{
		UserID:      owner.ID,
		NationalID:  "10987654321",
		Phone:       "2199999999",
		Address:     "Avenida Central, 55",
		City:        "Rio de Janeiro",
		State:       "RJ",
		ZipCode:     "20040000",
		BirthDate:   time.Date(1984, 1, 1, 0, 0, 0, 0, time.UTC),
		Income:      decimal.NewFromInt(12000),
		CreditScore: &stale,
	})
	if err != nil {
		t.Fatalf("create borrower: %v", err)
	}

	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	service := borrowerdomain.NewService(borrowerRepo, userRepo, outboxRepo, auditRepo, borrowerdomain.WithClock(func() time.Time { return asOf }))
	if err := service.EnqueueRescore(ctx, borrowerdomain.Actor{UserID: owner.ID, Role: userdomain.RoleAdmin}, ""); err != nil {
		t.Fatalf("enqueue rescore: %v", err)
	}

	worker := jobs.NewWorker(outboxRepo, service, slog.Default())
	if err := worker.RunOnce(ctx, 10); err != nil {
		t.Fatalf("run worker: %v", err)
	}

	updated, err := borrowerRepo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get borrower: %v", err)
	}
	if updated.CreditScore == nil || *updated.CreditScore != 950 {
		t.Fatalf("expected rescored 950, got %v", updated.CreditScore)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM outbox_jobs ORDER BY id DESC LIMIT 1`).Scan(&status); err != nil {
		t.Fatalf("query outbox status: %v", err)
	}
	if status != jobs.StatusDone {
		t.Fatalf("expected outbox status done, got %s", status)
	}
}
