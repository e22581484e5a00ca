package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	loandomain "github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/http/response"
	"github.com/risick/microcredito-api/internal/pagination"
)

type LoanService interface {
	ListLoans(ctx context.Context, borrowerID, status string, p pagination.Params) ([]loandomain.Entity, int64, error)
	GetLoan(ctx context.Context, loanID string) (*loandomain.Entity, error)
	ListPayments(ctx context.Context, loanID string, p pagination.Params) ([]payment.Entity, int64, error)
	PortfolioAnalytics(ctx context.Context) (*loandomain.PortfolioAnalytics, error)
}

type PaymentService interface {
	List(ctx context.Context, loanID, status string, p pagination.Params) ([]payment.Entity, int64, error)
}

type LoanHandler struct {
	loanService    LoanService
	paymentService PaymentService
	errs           *Errors
}

func NewLoanHandler(loanService LoanService, paymentService PaymentService, errs *Errors) *LoanHandler {
	return &LoanHandler{loanService: loanService, paymentService: paymentService, errs: errs}
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	p, err := paginationParams(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	items, total, err := h.loanService.ListLoans(c.Request.Context(), c.Query("borrowerId"), c.Query("status"), p)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.Page(c, http.StatusOK, "Lista de empréstimos", items, pagination.NewMeta(p, total))
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	item, err := h.loanService.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Dados do empréstimo", item)
}

func (h *LoanHandler) ListLoanPayments(c *gin.Context) {
	p, err := paginationParams(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	items, total, err := h.loanService.ListPayments(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.Page(c, http.StatusOK, "Pagamentos do empréstimo", items, pagination.NewMeta(p, total))
}

func (h *LoanHandler) GetPortfolioAnalytics(c *gin.Context) {
	out, err := h.loanService.PortfolioAnalytics(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Análise da carteira", out)
}

func (h *LoanHandler) ListPayments(c *gin.Context) {
	p, err := paginationParams(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	items, total, err := h.paymentService.List(c.Request.Context(), c.Query("loanId"), c.Query("status"), p)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.Page(c, http.StatusOK, "Lista de pagamentos", items, pagination.NewMeta(p, total))
}
