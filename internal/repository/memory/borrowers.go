package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/query"
)

type BorrowerRepository struct {
	s *Store
}

func (r *BorrowerRepository) Create(_ context.Context, in borrower.CreateInput) (*borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.borrowers {
		if b.UserID == in.UserID {
			return nil, borrower.ErrBorrowerExists
		}
		if b.NationalID == in.NationalID {
			return nil, borrower.ErrDuplicateNationalID
		}
	}
	now := r.s.now()
	stored := &storedBorrower{seq: r.s.nextSeq(), Entity: borrower.Entity{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		NationalID:  in.NationalID,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		BirthDate:   in.BirthDate,
		Income:      in.Income,
		CreditScore: copyInt32(in.CreditScore),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
	r.s.borrowers[stored.ID] = stored
	return r.view(stored, true), nil
}

func (r *BorrowerRepository) GetByID(_ context.Context, id string) (*borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrowers[id]
	if !ok {
		return nil, borrower.ErrBorrowerNotFound
	}
	return r.view(b, true), nil
}

func (r *BorrowerRepository) GetByUserID(_ context.Context, userID string) (*borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.borrowers {
		if b.UserID == userID {
			return r.view(b, true), nil
		}
	}
	return nil, borrower.ErrBorrowerNotFound
}

func (r *BorrowerRepository) GetByNationalID(_ context.Context, nationalID string) (*borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.borrowers {
		if b.NationalID == nationalID {
			return r.view(b, false), nil
		}
	}
	return nil, borrower.ErrBorrowerNotFound
}

func (r *BorrowerRepository) List(_ context.Context, filter query.Node, limit, offset int) ([]borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.match(filter), limit, offset), nil
}

func (r *BorrowerRepository) Count(_ context.Context, filter query.Node) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.match(filter))), nil
}

func (r *BorrowerRepository) Update(_ context.Context, id string, in borrower.UpdateInput) (*borrower.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.borrowers[id]
	if !ok {
		return nil, borrower.ErrBorrowerNotFound
	}
	if in.NationalID != nil {
		for _, other := range r.s.borrowers {
			if other.ID != id && other.NationalID == *in.NationalID {
				return nil, borrower.ErrDuplicateNationalID
			}
		}
		b.NationalID = *in.NationalID
	}
	if in.Phone != nil {
		b.Phone = *in.Phone
	}
	if in.Address != nil {
		b.Address = *in.Address
	}
	if in.City != nil {
		b.City = *in.City
	}
	if in.State != nil {
		b.State = *in.State
	}
	if in.ZipCode != nil {
		b.ZipCode = *in.ZipCode
	}
	if in.BirthDate != nil {
		b.BirthDate = *in.BirthDate
	}
	if in.Income != nil {
		b.Income = *in.Income
	}
	if in.CreditScore != nil {
		b.CreditScore = copyInt32(in.CreditScore)
	}
	b.UpdatedAt = r.s.now()
	return r.view(b, true), nil
}

func (r *BorrowerRepository) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrowers[id]
	if !ok {
		return borrower.ErrBorrowerNotFound
	}
	b.IsActive = active
	b.UpdatedAt = r.s.now()
	return nil
}

func (r *BorrowerRepository) CountOpenLoans(_ context.Context, borrowerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.loans {
		if l.BorrowerID == borrowerID && loan.IsOpen(l.Status) {
			n++
		}
	}
	return n, nil
}

func (r *BorrowerRepository) Stats(_ context.Context) (*borrower.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]borrower.Entity, 0, len(r.s.borrowers))
	for _, b := range r.s.borrowers {
		all = append(all, b.Entity)
	}
	stats := borrower.ComputeStats(all)
	return &stats, nil
}

// match returns every borrower satisfying filter, newest first. Callers hold
// the store lock.
func (r *BorrowerRepository) match(filter query.Node) []borrower.Entity {
	matched := make([]*storedBorrower, 0)
	for _, b := range r.s.borrowers {
		if query.Match(filter, *r.view(b, false)) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	out := make([]borrower.Entity, 0, len(matched))
	for _, b := range matched {
		out = append(out, *r.view(b, false))
	}
	return out
}

// view copies a stored borrower and joins its owner and loans the way the
// SQL repository does.
func (r *BorrowerRepository) view(b *storedBorrower, withLoans bool) *borrower.Entity {
	out := b.Entity
	out.CreditScore = copyInt32(b.CreditScore)
	if u, ok := r.s.users[b.UserID]; ok {
		out.User = &borrower.UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsActive: u.IsActive}
	}
	loans := make([]*storedLoan, 0)
	for _, l := range r.s.loans {
		if l.BorrowerID == b.ID {
			loans = append(loans, l)
		}
	}
	out.LoanCount = int64(len(loans))
	out.Loans = nil
	if withLoans {
		sort.Slice(loans, func(i, j int) bool { return loans[i].seq > loans[j].seq })
		out.Loans = make([]borrower.LoanSummary, 0, len(loans))
		for _, l := range loans {
			out.Loans = append(out.Loans, borrower.LoanSummary{
				ID:        l.ID,
				Amount:    l.Amount,
				Status:    l.Status,
				CreatedAt: l.CreatedAt,
				DueDate:   l.DueDate,
			})
		}
	}
	return &out
}

func copyInt32(v *int32) *int32 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
