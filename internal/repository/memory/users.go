package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/risick/microcredito-api/internal/db"
	"github.com/risick/microcredito-api/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, in user.CreateInput) (*user.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == in.Email {
			return nil, user.ErrEmailTaken
		}
	}
	role := in.Role
	if role == "" {
		role = user.RoleUser
	}
	now := r.s.now()
	stored := &storedUser{seq: r.s.nextSeq(), Entity: user.Entity{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	r.s.users[stored.ID] = stored
	out := stored.Entity
	return &out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := u.Entity
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u.Entity
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) List(_ context.Context, f user.ListFilter) ([]user.Entity, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(f.Search)
	matched := make([]*storedUser, 0)
	for _, u := range r.s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	out := make([]user.Entity, 0, len(matched))
	for _, u := range matched {
		out = append(out, u.Entity)
	}
	return page(out, f.Limit, f.Offset), int64(len(matched)), nil
}

func (r *UserRepository) Update(_ context.Context, id string, in user.UpdateInput) (*user.Entity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if in.Email != nil {
		for _, other := range r.s.users {
			if other.ID != id && other.Email == *in.Email {
				return nil, user.ErrEmailTaken
			}
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.UpdatedAt = r.s.now()
	out := u.Entity
	return &out, nil
}

func (r *UserRepository) Stats(_ context.Context) (*user.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := &user.Stats{ByRole: []user.RoleCount{}}
	roles := map[string]int64{}
	for _, u := range r.s.users {
		out.Total++
		if u.IsActive {
			out.Active++
		}
		roles[u.Role]++
	}
	out.Inactive = out.Total - out.Active
	for role, n := range roles {
		out.ByRole = append(out.ByRole, user.RoleCount{Role: role, Count: n})
	}
	sort.Slice(out.ByRole, func(i, j int) bool {
		if out.ByRole[i].Count != out.ByRole[j].Count {
			return out.ByRole[i].Count > out.ByRole[j].Count
		}
		return out.ByRole[i].Role < out.ByRole[j].Role
	})
	return out, nil
}

type SessionRepository struct {
	s *Store
}

func (r *SessionRepository) CreateSession(_ context.Context, userID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	sess := &db.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RefreshTokenHash: refreshHash,
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.s.sessions[sess.ID] = sess
	out := *sess
	return &out, nil
}

func (r *SessionRepository) GetSessionByID(_ context.Context, sessionID string) (*db.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[sessionID]
	if !ok {
		return nil, db.ErrSessionNotFound
	}
	out := *sess
	return &out, nil
}

func (r *SessionRepository) RevokeSession(_ context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[sessionID]; ok && sess.RevokedAt == nil {
		now := r.s.now()
		sess.RevokedAt = &now
	}
	return nil
}

func (r *SessionRepository) RevokeUserSessions(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			revokedAt := now
			sess.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *SessionRepository) UpdateSessionRefreshHash(_ context.Context, sessionID, refreshHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[sessionID]; ok {
		sess.RefreshTokenHash = refreshHash
	}
	return nil
}
