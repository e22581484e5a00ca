package borrower

import (
	"context"
	"time"

	"github.com/risick/microcredito-api/internal/query"
	"github.com/shopspring/decimal"
)

type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

type LoanSummary struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	DueDate   *time.Time      `json:"dueDate"`
}

type Entity struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	NationalID  string          `json:"bi"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	ZipCode     string          `json:"zipCode"`
	BirthDate   time.Time       `json:"birthDate"`
	Income      decimal.Decimal `json:"income"`
	CreditScore *int32          `json:"creditScore"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	User      *UserSummary  `json:"user,omitempty"`
	LoanCount int64         `json:"loanCount"`
	Loans     []LoanSummary `json:"loans,omitempty"`
}

type CreateInput struct {
	UserID      string
	NationalID  string
	Phone       string
	Address     string
	City        string
	State       string
	ZipCode     string
	BirthDate   time.Time
	Income      decimal.Decimal
	CreditScore *int32
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	NationalID  *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	BirthDate   *time.Time
	Income      *decimal.Decimal
	CreditScore *int32
}

func (u UpdateInput) Empty() bool {
	return u.NationalID == nil && u.Phone == nil && u.Address == nil && u.City == nil &&
		u.State == nil && u.ZipCode == nil && u.BirthDate == nil && u.Income == nil && u.CreditScore == nil
}

type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

type IncomeRanges struct {
	UpTo2000   int64 `json:"0-2000"`
	UpTo5000   int64 `json:"2001-5000"`
	UpTo10000  int64 `json:"5001-10000"`
	Above10000 int64 `json:"10000+"`
}

func (r IncomeRanges) Sum() int64 {
	return r.UpTo2000 + r.UpTo5000 + r.UpTo10000 + r.Above10000
}

type Stats struct {
	Total          int64           `json:"total"`
	Active         int64           `json:"active"`
	Inactive       int64           `json:"inactive"`
	ByState        []StateCount    `json:"byState"`
	AvgIncome      decimal.Decimal `json:"avgIncome"`
	AvgCreditScore float64         `json:"avgCreditScore"`
	IncomeRanges   IncomeRanges    `json:"incomeRanges"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	GetByUserID(ctx context.Context, userID string) (*Entity, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Entity, error)
	List(ctx context.Context, filter query.Node, limit, offset int) ([]Entity, error)
	Count(ctx context.Context, filter query.Node) (int64, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Entity, error)
	SetActive(ctx context.Context, id string, active bool) error
	CountOpenLoans(ctx context.Context, borrowerID string) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}
