package admin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/risick/microcredito-api/internal/domain/admin"
	"github.com/risick/microcredito-api/internal/domain/audit"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/pagination"
	"github.com/risick/microcredito-api/internal/repository/memory"
)

func seedUser(t *testing.T, store *memory.Store, email, name, role string) *userdomain.Entity {
	t.Helper()
	u, err := store.Users().Create(context.Background(), userdomain.CreateInput{Email: email, PasswordHash: "x", Name: name, Role: role})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAdminListAndStats(t *testing.T) {
	store := memory.NewStore()
	svc := admin.NewService(store.Users(), store.Sessions(), store.Audit())
	ctx := context.Background()

	seedUser(t, store, "root@example.com", "Root", userdomain.RoleAdmin)
	seedUser(t, store, "ana@example.com", "Ana Paula", userdomain.RoleUser)
	seedUser(t, store, "rui@example.com", "Rui", userdomain.RoleLoanOfficer)

	items, total, err := svc.ListUsers(ctx, admin.UserQuery{Role: "user"}, pagination.Normalize(1, 10))
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if total != 1 || items[0].Email != "ana@example.com" {
		t.Fatalf("unexpected role filter result: %d %+v", total, items)
	}

	_, total, err = svc.ListUsers(ctx, admin.UserQuery{Search: "PAULA"}, pagination.Normalize(1, 10))
	if err != nil || total != 1 {
		t.Fatalf("expected search by name to match once, got %d err=%v", total, err)
	}

	if _, _, err := svc.ListUsers(ctx, admin.UserQuery{Role: "superuser"}, pagination.Normalize(1, 10)); !errors.Is(err, userdomain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	stats, err := svc.UserStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Active != 3 || len(stats.ByRole) != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAdminUpdateUser(t *testing.T) {
	store := memory.NewStore()
	svc := admin.NewService(store.Users(), store.Sessions(), store.Audit())
	ctx := context.Background()

	root := seedUser(t, store, "root@example.com", "Root", userdomain.RoleAdmin)
	ana := seedUser(t, store, "ana@example.com", "Ana", userdomain.RoleUser)
	seedUser(t, store, "taken@example.com", "Taken", userdomain.RoleUser)

	role := "loan_officer"
	updated, err := svc.UpdateUser(ctx, root.ID, ana.ID, userdomain.UpdateInput{Role: &role})
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if updated.Role != userdomain.RoleLoanOfficer {
		t.Fatalf("expected normalized role, got %s", updated.Role)
	}

	email := " TAKEN@example.com"
	if _, err := svc.UpdateUser(ctx, root.ID, ana.ID, userdomain.UpdateInput{Email: &email}); !errors.Is(err, userdomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	bad := "GOD"
	if _, err := svc.UpdateUser(ctx, root.ID, ana.ID, userdomain.UpdateInput{Role: &bad}); !errors.Is(err, userdomain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	off := false
	if _, err := svc.UpdateUser(ctx, root.ID, root.ID, userdomain.UpdateInput{IsActive: &off}); !errors.Is(err, userdomain.ErrSelfDeactivation) {
		t.Fatalf("expected ErrSelfDeactivation, got %v", err)
	}

	name := "Ghost"
	if _, err := svc.UpdateUser(ctx, root.ID, "missing", userdomain.UpdateInput{Name: &name}); !errors.Is(err, userdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminDeactivateRevokesSessions(t *testing.T) {
	store := memory.NewStore()
	svc := admin.NewService(store.Users(), store.Sessions(), store.Audit())
	ctx := context.Background()

	root := seedUser(t, store, "root@example.com", "Root", userdomain.RoleAdmin)
	ana := seedUser(t, store, "ana@example.com", "Ana", userdomain.RoleUser)
	sess, err := store.Sessions().CreateSession(ctx, ana.ID, "hash", "ua", "127.0.0.1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := svc.DeactivateUser(ctx, root.ID, root.ID); !errors.Is(err, userdomain.ErrSelfDeactivation) {
		t.Fatalf("expected ErrSelfDeactivation, got %v", err)
	}
	if err := svc.DeactivateUser(ctx, root.ID, ana.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, _ := svc.GetUser(ctx, ana.ID)
	if got.IsActive {
		t.Fatalf("expected user inactive")
	}
	stored, _ := store.Sessions().GetSessionByID(ctx, sess.ID)
	if stored.RevokedAt == nil {
		t.Fatalf("expected session revoked")
	}

	events := store.Audit().Events()
	if len(events) != 1 || events[0].Action != audit.ActionUserDeactivated || events[0].ActorUserID != root.ID {
		t.Fatalf("unexpected audit trail: %+v", events)
	}
}
