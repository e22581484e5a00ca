// Package memory is an in-process implementation of every repository
// interface. It backs unit and handler tests, and evaluates borrower filters
// with query.Match so results agree with the SQL compiler.
package memory

import (
	"sync"
	"time"

	"github.com/risick/microcredito-api/internal/db"
	"github.com/risick/microcredito-api/internal/domain/audit"
	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/jobs"
)

type Store struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	users     map[string]*storedUser
	borrowers map[string]*storedBorrower
	sessions  map[string]*db.Session
	loans     map[string]*storedLoan
	payments  []payment.Entity
	audit     []audit.Event
	outbox    []jobs.OutboxJob
}

type storedUser struct {
	seq int64
	user.Entity
}

type storedBorrower struct {
	seq int64
	borrower.Entity
}

type storedLoan struct {
	seq int64
	loan.Entity
}

func NewStore() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		users:     map[string]*storedUser{},
		borrowers: map[string]*storedBorrower{},
		sessions:  map[string]*db.Session{},
		loans:     map[string]*storedLoan{},
	}
}

// WithClock fixes the timestamps written by the store.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Borrowers() *BorrowerRepository { return &BorrowerRepository{s: s} }
func (s *Store) Sessions() *SessionRepository   { return &SessionRepository{s: s} }
func (s *Store) Loans() *LoanRepository         { return &LoanRepository{s: s} }
func (s *Store) Payments() *PaymentRepository   { return &PaymentRepository{s: s} }
func (s *Store) Audit() *AuditRepository        { return &AuditRepository{s: s} }
func (s *Store) Outbox() *OutboxRepository      { return &OutboxRepository{s: s} }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}
