package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

type BorrowerRescorer interface {
	RecalculateScore(ctx context.Context, actor borrowerdomain.Actor, id string) (*borrowerdomain.Entity, error)
	RescoreActive(ctx context.Context) (int, error)
}

type Worker struct {
	outboxRepo   OutboxRepository
	borrowers    BorrowerRescorer
	logger       *slog.Logger
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, borrowers BorrowerRescorer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		outboxRepo:  outboxRepo,
		borrowers:   borrowers,
		logger:      logger,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

// Run polls the outbox until ctx is cancelled. A failing batch is logged and
// retried on the next tick.
func (w *Worker) Run(ctx context.Context, interval time.Duration, batchSize int32) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx, batchSize); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("outbox batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case borrowerdomain.OutboxTopicRescoreAll:
		return w.processRescoreAll(ctx, job)
	case borrowerdomain.OutboxTopicRescoreOne:
		return w.processRescoreOne(ctx, job)
	default:
		return w.handleJobError(ctx, job, errors.New("unsupported_topic"))
	}
}

type rescorePayload struct {
	BorrowerID  string `json:"borrower_id"`
	RequestedBy string `json:"requested_by"`
}

func (w *Worker) processRescoreAll(ctx context.Context, job OutboxJob) error {
	updated, err := w.borrowers.RescoreActive(ctx)
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}
	w.logger.Info("borrowers rescored", "job_id", job.ID, "updated", updated)
	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) processRescoreOne(ctx context.Context, job OutboxJob) error {
	var payload rescorePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, fmt.Errorf("invalid_payload"))
	}
	if payload.BorrowerID == "" {
		return w.handleJobError(ctx, job, errors.New("missing_borrower_id"))
	}

	actor := borrowerdomain.Actor{UserID: payload.RequestedBy}
	if _, err := w.borrowers.RecalculateScore(ctx, actor, payload.BorrowerID); err != nil {
		if errors.Is(err, borrowerdomain.ErrBorrowerNotFound) {
			return w.outboxRepo.MarkFailed(ctx, job.ID, err.Error())
		}
		return w.handleJobError(ctx, job, err)
	}
	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	w.logger.Warn("outbox job failed", "job_id", job.ID, "topic", job.Topic, "attempts", job.Attempts, "error", msg)
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
