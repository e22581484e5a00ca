package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/risick/microcredito-api/internal/domain/audit"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/pagination"
)

type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

// Service holds the admin-only user management operations.
type Service struct {
	userRepo  userdomain.Repository
	sessions  SessionRevoker
	auditRepo audit.Repository
}

func NewService(userRepo userdomain.Repository, sessions SessionRevoker, auditRepo audit.Repository) *Service {
	return &Service{userRepo: userRepo, sessions: sessions, auditRepo: auditRepo}
}

type UserQuery struct {
	Search   string
	Role     string
	IsActive *bool
}

func (s *Service) ListUsers(ctx context.Context, q UserQuery, p pagination.Params) ([]userdomain.Entity, int64, error) {
	role := strings.ToUpper(strings.TrimSpace(q.Role))
	if role != "" && !userdomain.ValidRole(role) {
		return nil, 0, userdomain.ErrInvalidRole
	}
	return s.userRepo.List(ctx, userdomain.ListFilter{
		Search:   strings.TrimSpace(q.Search),
		Role:     role,
		IsActive: q.IsActive,
		Limit:    p.Limit,
		Offset:   p.Offset(),
	})
}

func (s *Service) GetUser(ctx context.Context, id string) (*userdomain.Entity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, userdomain.ErrNotFound
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, adminUserID, id string, in userdomain.UpdateInput) (*userdomain.Entity, error) {
	if in.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*in.Role))
		if !userdomain.ValidRole(role) {
			return nil, userdomain.ErrInvalidRole
		}
		in.Role = &role
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		existing, err := s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != id:
			return nil, userdomain.ErrEmailTaken
		case err != nil && !errors.Is(err, userdomain.ErrNotFound):
			return nil, err
		}
		in.Email = &email
	}
	if in.IsActive != nil && !*in.IsActive && id == adminUserID {
		return nil, userdomain.ErrSelfDeactivation
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if in.IsActive != nil && !*in.IsActive && s.sessions != nil {
		_ = s.sessions.RevokeUserSessions(ctx, id)
	}
	audit.Record(ctx, s.auditRepo, adminUserID, audit.ActionUserUpdated, audit.TargetUser, id, map[string]any{
		"role":      updated.Role,
		"is_active": updated.IsActive,
	})
	return updated, nil
}

// DeactivateUser is a soft delete: the account stays but can no longer log in
// and its open sessions are revoked.
func (s *Service) DeactivateUser(ctx context.Context, adminUserID, id string) error {
	if id == adminUserID {
		return userdomain.ErrSelfDeactivation
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	inactive := false
	if _, err := s.userRepo.Update(ctx, id, userdomain.UpdateInput{IsActive: &inactive}); err != nil {
		return err
	}
	if s.sessions != nil {
		_ = s.sessions.RevokeUserSessions(ctx, id)
	}
	audit.Record(ctx, s.auditRepo, adminUserID, audit.ActionUserDeactivated, audit.TargetUser, id, nil)
	return nil
}

func (s *Service) UserStats(ctx context.Context) (*userdomain.Stats, error) {
	return s.userRepo.Stats(ctx)
}
