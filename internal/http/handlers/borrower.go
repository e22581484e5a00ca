package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/http/response"
	"github.com/risick/microcredito-api/internal/pagination"
)

type BorrowerService interface {
	Create(ctx context.Context, actor borrower.Actor, in borrower.CreateInput) (*borrower.Entity, error)
	Get(ctx context.Context, id string) (*borrower.Entity, error)
	GetByUserID(ctx context.Context, userID string) (*borrower.Entity, error)
	List(ctx context.Context, q borrower.Query, p pagination.Params) ([]borrower.Entity, int64, error)
	Update(ctx context.Context, actor borrower.Actor, id string, patch borrower.UpdateInput) (*borrower.Entity, error)
	UpdateOwn(ctx context.Context, actor borrower.Actor, patch borrower.UpdateInput) (*borrower.Entity, error)
	Deactivate(ctx context.Context, actor borrower.Actor, id string) error
	RecalculateScore(ctx context.Context, actor borrower.Actor, id string) (*borrower.Entity, error)
	Stats(ctx context.Context) (*borrower.Stats, error)
	EnqueueRescore(ctx context.Context, actor borrower.Actor, borrowerID string) error
}

type BorrowerHandler struct {
	service  BorrowerService
	errs     *Errors
	validate validatorFunc
}

func NewBorrowerHandler(service BorrowerService, errs *Errors) *BorrowerHandler {
	return &BorrowerHandler{service: service, errs: errs, validate: newValidator().Struct}
}

func (h *BorrowerHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}
	var req createBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Validation(c, err)
		return
	}
	if err := h.validate(req); err != nil {
		h.errs.Validation(c, err)
		return
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, borrower.CreateInput{
		UserID:      req.UserID,
		NationalID:  req.NationalID,
		Phone:       req.Phone,
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		State:       strings.ToUpper(req.State),
		ZipCode:     req.ZipCode,
		BirthDate:   birthDate,
		Income:      *req.Income,
		CreditScore: req.CreditScore,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Perfil de cliente criado com sucesso", created)
}

func (h *BorrowerHandler) List(c *gin.Context) {
	p, err := paginationParams(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	q, err := borrower.ParseQuery(c.Request.URL.Query())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	items, total, err := h.service.List(c.Request.Context(), q, p)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.Page(c, http.StatusOK, "Lista de clientes", items, pagination.NewMeta(p, total))
}

func (h *BorrowerHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Dados do cliente", item)
}

func (h *BorrowerHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}
	item, err := h.service.GetByUserID(c.Request.Context(), actor.UserID)
	if err != nil {
		h.writeOwnErr(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Meu perfil de cliente", item)
}

func (h *BorrowerHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}
	updated, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Cliente atualizado com sucesso", updated)
}

func (h *BorrowerHandler) UpdateMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, msgUnauthorized, "")
		return
	}
	patch, ok := h.bindPatch(c)
	if !ok {
		return
	}
	updated, err := h.service.UpdateOwn(c.Request.Context(), actor, patch)
	if err != nil {
		h.writeOwnErr(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Perfil atualizado com sucesso", updated)
}

func (h *BorrowerHandler) Delete(c *gin.Context) {
	actor, _ := currentActor(c)
	if err := h.service.Deactivate(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Cliente desativado com sucesso", nil)
}

func (h *BorrowerHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Estatísticas de clientes", stats)
}

// RecalculateScore rescores one borrower inline, or queues it for the worker
// when async=true.
func (h *BorrowerHandler) RecalculateScore(c *gin.Context) {
	actor, _ := currentActor(c)
	if c.Query("async") == "true" {
		if err := h.service.EnqueueRescore(c.Request.Context(), actor, c.Param("id")); err != nil {
			h.errs.Write(c, err)
			return
		}
		response.OK(c, http.StatusAccepted, "Recálculo de score agendado", nil)
		return
	}
	updated, err := h.service.RecalculateScore(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Score de crédito recalculado", updated)
}

// Rescore queues a background rescore of every active borrower.
func (h *BorrowerHandler) Rescore(c *gin.Context) {
	actor, _ := currentActor(c)
	if err := h.service.EnqueueRescore(c.Request.Context(), actor, ""); err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusAccepted, "Recálculo de scores agendado", nil)
}

func (h *BorrowerHandler) bindPatch(c *gin.Context) (borrower.UpdateInput, bool) {
	var req updateBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Validation(c, err)
		return borrower.UpdateInput{}, false
	}
	if err := h.validate(req); err != nil {
		h.errs.Validation(c, err)
		return borrower.UpdateInput{}, false
	}
	patch := borrower.UpdateInput{
		NationalID:  req.NationalID,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		ZipCode:     req.ZipCode,
		Income:      req.Income,
		CreditScore: req.CreditScore,
	}
	if req.State != nil {
		state := strings.ToUpper(*req.State)
		patch.State = &state
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			h.errs.Write(c, err)
			return borrower.UpdateInput{}, false
		}
		patch.BirthDate = &birthDate
	}
	return patch, true
}

func (h *BorrowerHandler) writeOwnErr(c *gin.Context, err error) {
	if errors.Is(err, borrower.ErrBorrowerNotFound) {
		response.Fail(c, http.StatusNotFound, "Perfil de cliente não encontrado", "")
		return
	}
	h.errs.Write(c, err)
}

func parseBirthDate(raw string) (time.Time, error) {
	t, err := borrower.ParseBirthDate(raw)
	if err != nil {
		return time.Time{}, &borrower.ValidationError{Field: "birthDate", Message: "Data de nascimento inválida"}
	}
	return t, nil
}
