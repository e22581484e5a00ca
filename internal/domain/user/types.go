package user

import (
	"context"
	"errors"
	"time"
)

const (
	RoleUser        = "USER"
	RoleAdmin       = "ADMIN"
	RoleLoanOfficer = "LOAN_OFFICER"
	RoleManager     = "MANAGER"
)

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveAccount    = errors.New("inactive_account")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrSelfDeactivation   = errors.New("self_deactivation")
)

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleLoanOfficer, RoleManager:
		return true
	}
	return false
}

// IsStaff reports roles allowed to browse other people's records.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleLoanOfficer || role == RoleManager
}

type Entity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
}

type UpdateInput struct {
	Email    *string
	Name     *string
	Role     *string
	IsActive *bool
}

type ListFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Limit    int
	Offset   int
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

type Stats struct {
	Total    int64       `json:"total"`
	Active   int64       `json:"active"`
	Inactive int64       `json:"inactive"`
	ByRole   []RoleCount `json:"byRole"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	GetByEmail(ctx context.Context, email string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, int64, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Entity, error)
	Stats(ctx context.Context) (*Stats, error)
}
