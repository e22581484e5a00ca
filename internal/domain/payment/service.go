package payment

import (
	"context"
	"strings"

	"github.com/risick/microcredito-api/internal/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, loanID, status string, p pagination.Params) ([]Entity, int64, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, ListFilter{
		LoanID: strings.TrimSpace(loanID),
		Status: status,
		Limit:  p.Limit,
		Offset: p.Offset(),
	})
}
