package loan

import (
	"context"
	"strings"

	"github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/pagination"
)

type PaymentRepository interface {
	List(ctx context.Context, f payment.ListFilter) ([]payment.Entity, int64, error)
}

type Service struct {
	loanRepo    Repository
	paymentRepo PaymentRepository
}

func NewService(loanRepo Repository, paymentRepo PaymentRepository) *Service {
	return &Service{loanRepo: loanRepo, paymentRepo: paymentRepo}
}

func (s *Service) ListLoans(ctx context.Context, borrowerID, status string, p pagination.Params) ([]Entity, int64, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.loanRepo.List(ctx, ListFilter{
		BorrowerID: strings.TrimSpace(borrowerID),
		Status:     status,
		Limit:      p.Limit,
		Offset:     p.Offset(),
	})
}

func (s *Service) GetLoan(ctx context.Context, loanID string) (*Entity, error) {
	if strings.TrimSpace(loanID) == "" {
		return nil, ErrNotFound
	}
	return s.loanRepo.GetByID(ctx, loanID)
}

// ListPayments returns the payment schedule of one loan, oldest due first.
func (s *Service) ListPayments(ctx context.Context, loanID string, p pagination.Params) ([]payment.Entity, int64, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, 0, err
	}
	return s.paymentRepo.List(ctx, payment.ListFilter{LoanID: loanID, Limit: p.Limit, Offset: p.Offset()})
}

func (s *Service) PortfolioAnalytics(ctx context.Context) (*PortfolioAnalytics, error) {
	return s.loanRepo.GetPortfolioAnalytics(ctx)
}
