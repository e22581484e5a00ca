package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/risick/microcredito-api/internal/auth"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/repository/memory"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(store *memory.Store) (*auth.Service, *auth.JWTManager) {
	jwt := auth.NewJWTManager("microcredito-api", "microcredito-clients", "test-secret")
	svc := auth.NewService(store.Users(), store.Sessions(), store.Audit(), jwt, bcrypt.MinCost, 15*time.Minute, time.Hour)
	return svc, jwt
}

func TestRegisterLoginAndProfile(t *testing.T) {
	store := memory.NewStore()
	svc, jwt := newAuthService(store)
	ctx := context.Background()

	tokens, err := svc.Register(ctx, auth.RegisterInput{Email: " Ana@Example.com ", Password: "secret123", Name: " Ana "}, auth.ClientInfo{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if tokens.User.Email != "ana@example.com" || tokens.User.Role != userdomain.RoleUser || tokens.User.Name != "Ana" {
		t.Fatalf("unexpected registered user: %+v", tokens.User)
	}
	if tokens.User.PasswordHash == "secret123" {
		t.Fatalf("password must be hashed")
	}

	claims, err := jwt.Parse(tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != tokens.User.ID || claims.Type != auth.TokenTypeAccess {
		t.Fatalf("unexpected access claims: %+v", claims)
	}

	if _, err := svc.Register(ctx, auth.RegisterInput{Email: "ana@example.com", Password: "x", Name: "Other"}, auth.ClientInfo{}); !errors.Is(err, userdomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := svc.Login(ctx, "ANA@example.com", "secret123", auth.ClientInfo{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "wrong", auth.ClientInfo{}); !errors.Is(err, userdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret123", auth.ClientInfo{}); !errors.Is(err, userdomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	me, err := svc.Me(ctx, tokens.User.ID)
	if err != nil || me.Email != "ana@example.com" {
		t.Fatalf("unexpected profile: %+v err=%v", me, err)
	}
	if len(store.Audit().Events()) != 1 {
		t.Fatalf("expected registration audit event")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	tokens, err := svc.Register(ctx, auth.RegisterInput{Email: "off@example.com", Password: "secret123", Name: "Off"}, auth.ClientInfo{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	inactive := false
	if _, err := store.Users().Update(ctx, tokens.User.ID, userdomain.UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Login(ctx, "off@example.com", "secret123", auth.ClientInfo{}); !errors.Is(err, userdomain.ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	first, err := svc.Register(ctx, auth.RegisterInput{Email: "rot@example.com", Password: "secret123", Name: "Rot"}, auth.ClientInfo{UserAgent: "test"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Refresh(ctx, first.AccessToken, auth.ClientInfo{}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage", auth.ClientInfo{}); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken, auth.ClientInfo{})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Fatalf("expected a new session on refresh")
	}
	if _, err := svc.Refresh(ctx, first.RefreshToken, auth.ClientInfo{}); !errors.Is(err, auth.ErrSessionRevoked) {
		t.Fatalf("reused refresh token must be rejected, got %v", err)
	}

	if err := svc.Logout(ctx, second.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken, auth.ClientInfo{}); !errors.Is(err, auth.ErrSessionRevoked) {
		t.Fatalf("expected revoked session after logout, got %v", err)
	}
	if err := svc.Logout(ctx, "not-a-token"); err != nil {
		t.Fatalf("logout with garbage must be a no-op, got %v", err)
	}
}
