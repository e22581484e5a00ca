package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/domain/admin"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/http/response"
	"github.com/risick/microcredito-api/internal/pagination"
)

type UserAdminService interface {
	ListUsers(ctx context.Context, q admin.UserQuery, p pagination.Params) ([]userdomain.Entity, int64, error)
	GetUser(ctx context.Context, id string) (*userdomain.Entity, error)
	UpdateUser(ctx context.Context, adminUserID, id string, in userdomain.UpdateInput) (*userdomain.Entity, error)
	DeactivateUser(ctx context.Context, adminUserID, id string) error
	UserStats(ctx context.Context) (*userdomain.Stats, error)
}

type UserHandler struct {
	service  UserAdminService
	errs     *Errors
	validate validatorFunc
}

func NewUserHandler(service UserAdminService, errs *Errors) *UserHandler {
	return &UserHandler{service: service, errs: errs, validate: newValidator().Struct}
}

func (h *UserHandler) List(c *gin.Context) {
	p, err := paginationParams(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	q := admin.UserQuery{Search: c.Query("search"), Role: c.Query("role")}
	if raw, ok := c.GetQuery("isActive"); ok {
		active := raw == "true"
		q.IsActive = &active
	}

	items, total, err := h.service.ListUsers(c.Request.Context(), q, p)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.Page(c, http.StatusOK, "Lista de usuários", items, pagination.NewMeta(p, total))
}

func (h *UserHandler) Get(c *gin.Context) {
	item, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Dados do usuário", item)
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, _ := currentActor(c)
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Validation(c, err)
		return
	}
	if err := h.validate(req); err != nil {
		h.errs.Validation(c, err)
		return
	}

	updated, err := h.service.UpdateUser(c.Request.Context(), actor.UserID, c.Param("id"), userdomain.UpdateInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Usuário atualizado com sucesso", updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor, _ := currentActor(c)
	if err := h.service.DeactivateUser(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Usuário desativado com sucesso", nil)
}

func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.service.UserStats(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Estatísticas de usuários", stats)
}
