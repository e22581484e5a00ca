package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/risick/microcredito-api/internal/db"
	"github.com/risick/microcredito-api/internal/domain/audit"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken   = errors.New("invalid_token")
	ErrSessionRevoked = errors.New("session_revoked")
	ErrSessionExpired = errors.New("session_expired")
)

type UserRepository interface {
	Create(ctx context.Context, in userdomain.CreateInput) (*userdomain.Entity, error)
	GetByID(ctx context.Context, id string) (*userdomain.Entity, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.Entity, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, userID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error)
	GetSessionByID(ctx context.Context, sessionID string) (*db.Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
	UpdateSessionRefreshHash(ctx context.Context, sessionID, refreshHash string) error
}

type Service struct {
	users      UserRepository
	sessions   SessionRepository
	auditRepo  audit.Repository
	jwt        *JWTManager
	bcryptCost int
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type AuthTokens struct {
	AccessToken  string             `json:"token"`
	RefreshToken string             `json:"refreshToken"`
	SessionID    string             `json:"-"`
	User         *userdomain.Entity `json:"user"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type ClientInfo struct {
	UserAgent string
	IPAddress string
}

func NewService(users UserRepository, sessions SessionRepository, auditRepo audit.Repository, jwt *JWTManager, bcryptCost int, accessTTL, refreshTTL time.Duration) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		auditRepo:  auditRepo,
		jwt:        jwt,
		bcryptCost: bcryptCost,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Register creates a USER account. Elevated roles are granted by an admin
// through the users API, never at sign-up.
func (s *Service) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthTokens, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, userdomain.ErrEmailTaken
	} else if !errors.Is(err, userdomain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, userdomain.CreateInput{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         userdomain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.auditRepo, user.ID, audit.ActionUserRegistered, audit.TargetUser, user.ID, map[string]any{"email": user.Email})

	return s.issue(ctx, user, client)
}

func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthTokens, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, userdomain.ErrNotFound) {
			return nil, userdomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, userdomain.ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, userdomain.ErrInvalidCredentials
	}
	return s.issue(ctx, user, client)
}

// Refresh rotates a refresh token: the old session is revoked and a new one
// is opened with fresh claims, so role changes take effect on refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthTokens, error) {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.GetSessionByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, ErrSessionRevoked
	}
	if s.now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	if session.RefreshTokenHash != hashToken(refreshToken) {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, userdomain.ErrInactiveAccount
	}

	if err := s.sessions.RevokeSession(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user, client)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil {
		return nil
	}
	if claims.Type != TokenTypeRefresh || claims.SessionID == "" {
		return nil
	}
	return s.sessions.RevokeSession(ctx, claims.SessionID)
}

func (s *Service) Me(ctx context.Context, userID string) (*userdomain.Entity, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issue(ctx context.Context, user *userdomain.Entity, client ClientInfo) (*AuthTokens, error) {
	expiresAt := s.now().Add(s.refreshTTL)
	session, err := s.sessions.CreateSession(ctx, user.ID, hashToken(uuid.NewString()), client.UserAgent, client.IPAddress, expiresAt)
	if err != nil {
		return nil, err
	}

	sub := Subject{UserID: user.ID, Email: user.Email, Role: user.Role}
	accessToken, err := s.jwt.Mint(sub, session.ID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.Mint(sub, session.ID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateSessionRefreshHash(ctx, session.ID, hashToken(refreshToken)); err != nil {
		return nil, err
	}

	return &AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken, SessionID: session.ID, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func ClientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
