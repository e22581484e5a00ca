package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusOverdue   = "OVERDUE"
	StatusCancelled = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid_payment_status")

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

type Entity struct {
	ID            string          `json:"id"`
	LoanID        string          `json:"loanId"`
	Amount        decimal.Decimal `json:"amount"`
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	Status        string          `json:"status"`
	DueDate       time.Time       `json:"dueDate"`
	PaidAt        *time.Time      `json:"paidAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ListFilter struct {
	LoanID string
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Entity, int64, error)
}
