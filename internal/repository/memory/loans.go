package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/risick/microcredito-api/internal/domain/audit"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/jobs"
	"github.com/shopspring/decimal"
)

type LoanRepository struct {
	s *Store
}

// Seed stores a loan as-is; there is no loan creation API yet.
func (r *LoanRepository) Seed(l loan.Entity) loan.Entity {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.s.now()
		l.UpdatedAt = l.CreatedAt
	}
	r.s.loans[l.ID] = &storedLoan{seq: r.s.nextSeq(), Entity: l}
	return l
}

func (r *LoanRepository) GetByID(_ context.Context, id string) (*loan.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	out := l.Entity
	return &out, nil
}

func (r *LoanRepository) List(_ context.Context, f loan.ListFilter) ([]loan.Entity, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*storedLoan, 0)
	for _, l := range r.s.loans {
		if f.BorrowerID != "" && l.BorrowerID != f.BorrowerID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	out := make([]loan.Entity, 0, len(matched))
	for _, l := range matched {
		out = append(out, l.Entity)
	}
	return page(out, f.Limit, f.Offset), int64(len(matched)), nil
}

func (r *LoanRepository) GetPortfolioAnalytics(_ context.Context) (*loan.PortfolioAnalytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := &loan.PortfolioAnalytics{ByStatus: []loan.StatusCount{}}
	byStatus := map[string]int64{}
	for _, l := range r.s.loans {
		out.TotalLoans++
		byStatus[l.Status]++
		out.TotalAmount = out.TotalAmount.Add(l.Amount)
		switch {
		case loan.IsOpen(l.Status):
			out.OpenLoans++
		case l.Status == loan.StatusPaid:
			out.PaidLoans++
		case l.Status == loan.StatusDefaulted:
			out.DefaultedLoans++
		}
	}
	for _, p := range r.s.payments {
		if p.Status == payment.StatusPaid {
			out.TotalRepaid = out.TotalRepaid.Add(p.Amount)
		}
	}
	if out.TotalAmount.IsPositive() {
		out.RepaymentRatePercent = out.TotalRepaid.Div(out.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	for status, n := range byStatus {
		out.ByStatus = append(out.ByStatus, loan.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out.ByStatus, func(i, j int) bool {
		if out.ByStatus[i].Count != out.ByStatus[j].Count {
			return out.ByStatus[i].Count > out.ByStatus[j].Count
		}
		return out.ByStatus[i].Status < out.ByStatus[j].Status
	})
	return out, nil
}

type PaymentRepository struct {
	s *Store
}

func (r *PaymentRepository) Seed(p payment.Entity) payment.Entity {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}
	r.s.payments = append(r.s.payments, p)
	return p
}

func (r *PaymentRepository) List(_ context.Context, f payment.ListFilter) ([]payment.Entity, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]payment.Entity, 0)
	for _, p := range r.s.payments {
		if f.LoanID != "" && p.LoanID != f.LoanID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return page(out, f.Limit, f.Offset), int64(len(out)), nil
}

type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Log(_ context.Context, in audit.LogInput) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, audit.Event{
		ID:          int64(len(r.s.audit) + 1),
		ActorUserID: in.ActorUserID,
		Action:      in.Action,
		TargetType:  in.TargetType,
		TargetID:    in.TargetID,
		Payload:     json.RawMessage(in.Payload),
		CreatedAt:   r.s.now(),
	})
	return nil
}

func (r *AuditRepository) LatestAuditEventID(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.audit)), nil
}

func (r *AuditRepository) ListAuditEventsSince(_ context.Context, lastID int64, limit int32) ([]audit.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]audit.Event, 0)
	for _, ev := range r.s.audit {
		if ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return page(out, int(limit), 0), nil
}

// Events returns a copy of every audit event written so far.
func (r *AuditRepository) Events() []audit.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]audit.Event, len(r.s.audit))
	copy(out, r.s.audit)
	return out
}

type OutboxRepository struct {
	s *Store
}

func (r *OutboxRepository) Enqueue(_ context.Context, topic string, payload []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, jobs.OutboxJob{
		ID:          int64(len(r.s.outbox) + 1),
		Topic:       topic,
		Payload:     append([]byte(nil), payload...),
		Status:      jobs.StatusPending,
		AvailableAt: r.s.now(),
	})
	return nil
}

func (r *OutboxRepository) ClaimPending(_ context.Context, limit int32) ([]jobs.OutboxJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	out := make([]jobs.OutboxJob, 0)
	for i := range r.s.outbox {
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
		job := &r.s.outbox[i]
		if job.Status != jobs.StatusPending || job.AvailableAt.After(now) {
			continue
		}
		job.Status = jobs.StatusProcessing
		job.Attempts++
		out = append(out, *job)
	}
	return out, nil
}

func (r *OutboxRepository) MarkDone(_ context.Context, jobID int64) error {
	return r.set(jobID, func(j *jobs.OutboxJob) { j.Status = jobs.StatusDone; j.LastError = "" })
}

func (r *OutboxRepository) MarkRetry(_ context.Context, jobID int64, next time.Time, lastError string) error {
	return r.set(jobID, func(j *jobs.OutboxJob) {
		j.Status = jobs.StatusPending
		j.AvailableAt = next
		j.LastError = lastError
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, jobID int64, lastError string) error {
	return r.set(jobID, func(j *jobs.OutboxJob) { j.Status = jobs.StatusFailed; j.LastError = lastError })
}

func (r *OutboxRepository) Jobs() []jobs.OutboxJob {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]jobs.OutboxJob, len(r.s.outbox))
	copy(out, r.s.outbox)
	return out
}

func (r *OutboxRepository) set(jobID int64, fn func(*jobs.OutboxJob)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == jobID {
			fn(&r.s.outbox[i])
			return nil
		}
	}
	return nil
}
