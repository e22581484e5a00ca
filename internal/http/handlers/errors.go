package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/auth"
	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/domain/loan"
	"github.com/risick/microcredito-api/internal/domain/payment"
	"github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/http/middleware"
	"github.com/risick/microcredito-api/internal/http/response"
	"github.com/risick/microcredito-api/internal/pagination"
)

const (
	msgValidation   = "Validation error"
	msgAuthError    = "Authentication error"
	msgInternal     = "Internal server error"
	msgUnauthorized = "Usuário não autenticado"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{borrower.ErrUserIDRequired, http.StatusBadRequest, "ID do usuário é obrigatório"},
	{borrower.ErrUserNotFound, http.StatusNotFound, "Usuário não encontrado"},
	{borrower.ErrBorrowerExists, http.StatusConflict, "Já existe um perfil de cliente para este usuário"},
	{borrower.ErrDuplicateNationalID, http.StatusConflict, "Bi já está cadastrado"},
	{borrower.ErrBorrowerNotFound, http.StatusNotFound, "Cliente não encontrado"},
	{borrower.ErrActiveLoans, http.StatusConflict, "Não é possível excluir cliente com empréstimos ativos"},
	{borrower.ErrInvalidScoreInput, http.StatusBadRequest, "Dados inválidos para cálculo do score"},
	{borrower.ErrEmptyUpdate, http.StatusBadRequest, "Nenhum campo para atualizar"},

	{user.ErrNotFound, http.StatusNotFound, "Usuário não encontrado"},
	{user.ErrEmailTaken, http.StatusConflict, "Email já está em uso"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "Credenciais inválidas"},
	{user.ErrInactiveAccount, http.StatusUnauthorized, "Conta desativada"},
	{user.ErrInvalidRole, http.StatusBadRequest, "Role inválida"},
	{user.ErrSelfDeactivation, http.StatusBadRequest, "Não é possível desativar a própria conta"},

	{loan.ErrNotFound, http.StatusNotFound, "Empréstimo não encontrado"},
	{loan.ErrInvalidStatus, http.StatusBadRequest, "Status de empréstimo inválido"},
	{payment.ErrInvalidStatus, http.StatusBadRequest, "Status de pagamento inválido"},
}

// Errors renders service errors as envelopes. Unknown errors are logged and
// surface as 500; their text is only returned when expose is set.
type Errors struct {
	logger *slog.Logger
	expose bool
}

func NewErrors(logger *slog.Logger, expose bool) *Errors {
	if logger == nil {
		logger = slog.Default()
	}
	return &Errors{logger: logger, expose: expose}
}

func (e *Errors) Write(c *gin.Context, err error) {
	var verr *borrower.ValidationError
	if errors.As(err, &verr) {
		response.Fail(c, http.StatusBadRequest, msgValidation, verr.Error())
		return
	}
	if errors.Is(err, pagination.ErrInvalidParams) {
		response.Fail(c, http.StatusBadRequest, msgValidation, "page and limit must be integers within range")
		return
	}
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		response.Fail(c, http.StatusUnauthorized, msgAuthError, "Token expired")
		return
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionRevoked):
		response.Fail(c, http.StatusUnauthorized, msgAuthError, "Invalid token")
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.message, "")
			return
		}
	}

	e.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	detail := "Something went wrong"
	if e.expose {
		detail = err.Error()
	}
	response.Fail(c, http.StatusInternalServerError, msgInternal, detail)
}

// Validation answers a failed bind or struct validation.
func (e *Errors) Validation(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, msgValidation, describeValidation(err))
}

func currentActor(c *gin.Context) (borrower.Actor, bool) {
	uid, _ := c.Get(middleware.ContextUserID)
	role, _ := c.Get(middleware.ContextUserRole)
	id, ok := uid.(string)
	if !ok || id == "" {
		return borrower.Actor{}, false
	}
	r, _ := role.(string)
	return borrower.Actor{UserID: id, Role: r}, true
}

func paginationParams(c *gin.Context) (pagination.Params, error) {
	return pagination.Parse(c.Query("page"), c.Query("limit"))
}
