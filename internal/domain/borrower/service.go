package borrower

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/risick/microcredito-api/internal/domain/audit"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/pagination"
	"github.com/risick/microcredito-api/internal/query"
)

const (
	OutboxTopicRescoreAll = "rescore_borrowers"
	OutboxTopicRescoreOne = "rescore_borrower"

	rescoreBatchSize = 100
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*userdomain.Entity, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

// Actor is the authenticated caller of a borrower operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == userdomain.RoleAdmin
}

type Service struct {
	repo       Repository
	userRepo   UserRepository
	outboxRepo OutboxRepository
	auditRepo  audit.Repository
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, userRepo UserRepository, outboxRepo OutboxRepository, auditRepo audit.Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*Entity, error) {
	// Admins create profiles on behalf of a named user; everyone else only for
	// themselves.
	userID := strings.TrimSpace(actor.UserID)
	if actor.IsAdmin() {
		userID = strings.TrimSpace(in.UserID)
	}
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	in.UserID = userID

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrBorrowerExists
	} else if !errors.Is(err, ErrBorrowerNotFound) {
		return nil, err
	}

	if _, err := s.repo.GetByNationalID(ctx, in.NationalID); err == nil {
		return nil, ErrDuplicateNationalID
	} else if !errors.Is(err, ErrBorrowerNotFound) {
		return nil, err
	}

	if in.CreditScore == nil {
		if !scoreInputValid(in.Income, in.BirthDate) {
			return nil, ErrInvalidScoreInput
		}
		score := int32(ComputeCreditScore(in.Income, in.BirthDate, in.State, s.now()))
		in.CreditScore = &score
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.auditRepo, actor.UserID, audit.ActionBorrowerCreated, audit.TargetBorrower, created.ID, map[string]any{
		"user_id":      created.UserID,
		"state":        created.State,
		"credit_score": created.CreditScore,
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrBorrowerNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (*Entity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrBorrowerNotFound
	}
	return s.repo.GetByUserID(ctx, userID)
}

// List returns one page of borrowers matching q, newest first, plus the total
// match count ignoring pagination.
func (s *Service) List(ctx context.Context, q Query, p pagination.Params) ([]Entity, int64, error) {
	filter := BuildFilter(q)
	items, err := s.repo.List(ctx, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, actor Actor, id string, patch UpdateInput) (*Entity, error) {
	if patch.Empty() {
		return nil, ErrEmptyUpdate
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.NationalID != nil {
		other, err := s.repo.GetByNationalID(ctx, *patch.NationalID)
		switch {
		case err == nil && other.ID != existing.ID:
			return nil, ErrDuplicateNationalID
		case err != nil && !errors.Is(err, ErrBorrowerNotFound):
			return nil, err
		}
	}

	if patch.Income != nil && patch.CreditScore == nil {
		birthDate := existing.BirthDate
		if patch.BirthDate != nil {
			birthDate = *patch.BirthDate
		}
		state := existing.State
		if patch.State != nil {
			state = *patch.State
		}
		if !scoreInputValid(*patch.Income, birthDate) {
			return nil, ErrInvalidScoreInput
		}
		score := int32(ComputeCreditScore(*patch.Income, birthDate, state, s.now()))
		patch.CreditScore = &score
	}

	updated, err := s.repo.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.auditRepo, actor.UserID, audit.ActionBorrowerUpdated, audit.TargetBorrower, updated.ID, map[string]any{
		"fields":       patchFields(patch),
		"credit_score": updated.CreditScore,
	})
	return updated, nil
}

// UpdateOwn applies a self-service patch to the caller's profile. Borrowers
// cannot set their own score; it is always derived.
func (s *Service) UpdateOwn(ctx context.Context, actor Actor, patch UpdateInput) (*Entity, error) {
	own, err := s.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	patch.CreditScore = nil
	return s.Update(ctx, actor, own.ID, patch)
}

func (s *Service) Deactivate(ctx context.Context, actor Actor, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	open, err := s.repo.CountOpenLoans(ctx, existing.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrActiveLoans
	}
	if err := s.repo.SetActive(ctx, existing.ID, false); err != nil {
		return err
	}
	audit.Record(ctx, s.auditRepo, actor.UserID, audit.ActionBorrowerDeactivated, audit.TargetBorrower, existing.ID, map[string]any{
		"user_id": existing.UserID,
	})
	return nil
}

// RecalculateScore recomputes the score from the stored income, birth date
// and state, discarding any previous override.
func (s *Service) RecalculateScore(ctx context.Context, actor Actor, id string) (*Entity, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scoreInputValid(existing.Income, existing.BirthDate) {
		return nil, ErrInvalidScoreInput
	}
	score := int32(ComputeCreditScore(existing.Income, existing.BirthDate, existing.State, s.now()))
	updated, err := s.repo.Update(ctx, existing.ID, UpdateInput{CreditScore: &score})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.auditRepo, actor.UserID, audit.ActionBorrowerRescored, audit.TargetBorrower, updated.ID, map[string]any{
		"previous": existing.CreditScore,
		"current":  score,
	})
	return updated, nil
}

// RescoreActive walks every active borrower and rewrites scores that changed.
// It returns the number of borrowers updated.
func (s *Service) RescoreActive(ctx context.Context) (int, error) {
	active := true
	filter := BuildFilter(Query{IsActive: &active})
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return 0, err
	}

	updated := 0
	asOf := s.now()
	for offset := 0; int64(offset) < total; offset += rescoreBatchSize {
		items, err := s.repo.List(ctx, filter, rescoreBatchSize, offset)
		if err != nil {
			return updated, err
		}
		if len(items) == 0 {
			break
		}
		for _, b := range items {
			if !scoreInputValid(b.Income, b.BirthDate) {
				continue
			}
			score := int32(ComputeCreditScore(b.Income, b.BirthDate, b.State, asOf))
			if b.CreditScore != nil && *b.CreditScore == score {
				continue
			}
			if _, err := s.repo.Update(ctx, b.ID, UpdateInput{CreditScore: &score}); err != nil {
				return updated, err
			}
			updated++
		}
	}
	return updated, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// EnqueueRescore queues a bulk rescore for the worker, or a single borrower
// when borrowerID is set.
func (s *Service) EnqueueRescore(ctx context.Context, actor Actor, borrowerID string) error {
	topic := OutboxTopicRescoreAll
	body := map[string]any{"requested_by": actor.UserID}
	if borrowerID = strings.TrimSpace(borrowerID); borrowerID != "" {
		if _, err := s.repo.GetByID(ctx, borrowerID); err != nil {
			return err
		}
		topic = OutboxTopicRescoreOne
		body["borrower_id"] = borrowerID
	}
	payload, _ := json.Marshal(body)
	if err := s.outboxRepo.Enqueue(ctx, topic, payload); err != nil {
		return err
	}
	audit.Record(ctx, s.auditRepo, actor.UserID, audit.ActionBorrowerRescoreQueued, audit.TargetBorrower, borrowerID, map[string]any{
		"topic": topic,
	})
	return nil
}

func patchFields(p UpdateInput) []string {
	fields := []string{}
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.NationalID != nil, string(FieldNationalID))
	add(p.Phone != nil, "phone")
	add(p.Address != nil, "address")
	add(p.City != nil, string(FieldCity))
	add(p.State != nil, string(FieldState))
	add(p.ZipCode != nil, "zip_code")
	add(p.BirthDate != nil, "birth_date")
	add(p.Income != nil, string(FieldIncome))
	add(p.CreditScore != nil, string(FieldCreditScore))
	return fields
}

var _ query.Record = Entity{}
