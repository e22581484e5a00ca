package loan

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusDisbursed = "DISBURSED"
	StatusActive    = "ACTIVE"
	StatusPaid      = "PAID"
	StatusDefaulted = "DEFAULTED"
	StatusCancelled = "CANCELLED"
)

var (
	ErrNotFound      = errors.New("loan_not_found")
	ErrInvalidStatus = errors.New("invalid_loan_status")
)

// OpenStatuses are the statuses that keep a borrower from being deactivated.
var OpenStatuses = []string{StatusPending, StatusApproved, StatusDisbursed, StatusActive}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusDisbursed,
		StatusActive, StatusPaid, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

func IsOpen(status string) bool {
	for _, s := range OpenStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Entity struct {
	ID             string          `json:"id"`
	BorrowerID     string          `json:"borrowerId"`
	LoanOfficerID  *string         `json:"loanOfficerId"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TermMonths     int32           `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         string          `json:"status"`
	ApprovedAt     *time.Time      `json:"approvedAt"`
	DisbursedAt    *time.Time      `json:"disbursedAt"`
	DueDate        *time.Time      `json:"dueDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ListFilter struct {
	BorrowerID string
	Status     string
	Limit      int
	Offset     int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type PortfolioAnalytics struct {
	TotalLoans           int64           `json:"totalLoans"`
	OpenLoans            int64           `json:"openLoans"`
	PaidLoans            int64           `json:"paidLoans"`
	DefaultedLoans       int64           `json:"defaultedLoans"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	TotalRepaid          decimal.Decimal `json:"totalRepaid"`
	RepaymentRatePercent float64         `json:"repaymentRatePercent"`
	ByStatus             []StatusCount   `json:"byStatus"`
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, int64, error)
	GetPortfolioAnalytics(ctx context.Context) (*PortfolioAnalytics, error)
}
