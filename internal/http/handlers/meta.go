package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/http/response"
)

type MetaHandler struct {
	env     string
	version string
}

func NewMetaHandler(env, version string) *MetaHandler {
	return &MetaHandler{env: env, version: version}
}

func (h *MetaHandler) GetMeta(c *gin.Context) {
	response.OK(c, http.StatusOK, "Microcrédito API", gin.H{
		"name":    "microcredito-api",
		"version": h.version,
		"env":     h.env,
	})
}
