package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	borrowerdomain "github.com/risick/microcredito-api/internal/domain/borrower"
)

type outboxRepoMock struct {
	jobs    []OutboxJob
	done    []int64
	retried map[int64]string
	failed  map[int64]string
}

func (m *outboxRepoMock) ClaimPending(_ context.Context, _ int32) ([]OutboxJob, error) {
	out := m.jobs
	m.jobs = nil
	return out, nil
}

func (m *outboxRepoMock) MarkDone(_ context.Context, jobID int64) error {
	m.done = append(m.done, jobID)
	return nil
}

func (m *outboxRepoMock) MarkRetry(_ context.Context, jobID int64, _ time.Time, lastError string) error {
	if m.retried == nil {
		m.retried = map[int64]string{}
	}
	m.retried[jobID] = lastError
	return nil
}

func (m *outboxRepoMock) MarkFailed(_ context.Context, jobID int64, lastError string) error {
	if m.failed == nil {
		m.failed = map[int64]string{}
	}
	m.failed[jobID] = lastError
	return nil
}

type rescorerMock struct {
	recalculated []string
	actors       []string
	bulkRuns     int
	bulkErr      error
}

func (m *rescorerMock) RecalculateScore(_ context.Context, actor borrowerdomain.Actor, id string) (*borrowerdomain.Entity, error) {
	if id == "missing" {
		return nil, borrowerdomain.ErrBorrowerNotFound
	}
	m.recalculated = append(m.recalculated, id)
	m.actors = append(m.actors, actor.UserID)
	return &borrowerdomain.Entity{ID: id}, nil
}

func (m *rescorerMock) RescoreActive(_ context.Context) (int, error) {
	m.bulkRuns++
	return 3, m.bulkErr
}

func TestWorkerProcessesRescoreJobs(t *testing.T) {
	repo := &outboxRepoMock{jobs: []OutboxJob{
		{ID: 1, Topic: borrowerdomain.OutboxTopicRescoreAll, Payload: []byte(`{"requested_by":"admin-1"}`), Attempts: 1},
		{ID: 2, Topic: borrowerdomain.OutboxTopicRescoreOne, Payload: []byte(`{"borrower_id":"b-1","requested_by":"admin-1"}`), Attempts: 1},
	}}
	rescorer := &rescorerMock{}
	w := NewWorker(repo, rescorer, nil)

	if err := w.RunOnce(context.Background(), 10); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if rescorer.bulkRuns != 1 {
		t.Fatalf("expected one bulk rescore, got %d", rescorer.bulkRuns)
	}
	if len(rescorer.recalculated) != 1 || rescorer.recalculated[0] != "b-1" || rescorer.actors[0] != "admin-1" {
		t.Fatalf("unexpected single rescore: %+v", rescorer)
	}
	if len(repo.done) != 2 {
		t.Fatalf("expected both jobs done, got %v", repo.done)
	}
}

func TestWorkerFailsMissingBorrowerImmediately(t *testing.T) {
	repo := &outboxRepoMock{jobs: []OutboxJob{
		{ID: 7, Topic: borrowerdomain.OutboxTopicRescoreOne, Payload: []byte(`{"borrower_id":"missing"}`), Attempts: 1},
	}}
	w := NewWorker(repo, &rescorerMock{}, nil)

	if err := w.RunOnce(context.Background(), 10); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if _, ok := repo.failed[7]; !ok {
		t.Fatalf("expected job 7 failed without retry")
	}
}

func TestWorkerRetriesThenFails(t *testing.T) {
	repo := &outboxRepoMock{jobs: []OutboxJob{
		{ID: 1, Topic: borrowerdomain.OutboxTopicRescoreAll, Attempts: 1},
		{ID: 2, Topic: borrowerdomain.OutboxTopicRescoreAll, Attempts: 5},
		{ID: 3, Topic: "unknown", Attempts: 1},
		{ID: 4, Topic: borrowerdomain.OutboxTopicRescoreOne, Payload: []byte(`not json`), Attempts: 1},
	}}
	w := NewWorker(repo, &rescorerMock{bulkErr: errors.New("db down")}, nil)
	w.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	if err := w.RunOnce(context.Background(), 10); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if repo.retried[1] != "db down" {
		t.Fatalf("expected job 1 retried, got %v", repo.retried)
	}
	if repo.failed[2] != "db down" {
		t.Fatalf("expected job 2 failed at max attempts, got %v", repo.failed)
	}
	if repo.retried[3] != "unsupported_topic" {
		t.Fatalf("expected unsupported topic retry, got %v", repo.retried)
	}
	if repo.retried[4] != "invalid_payload" {
		t.Fatalf("expected invalid payload retry, got %v", repo.retried)
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(&outboxRepoMock{}, &rescorerMock{}, nil)
	if err := w.Run(ctx, time.Millisecond, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
