package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/http/response"
)

const (
	msgNotAuthenticated = "Usuário não autenticado"
	msgForbidden        = "Não possui Permissão"
)

func RequireRole(allowed ...string) gin.HandlerFunc {
	allowedSet := map[string]struct{}{}
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(ContextUserRole)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, msgNotAuthenticated, "")
			return
		}

		role, ok := v.(string)
		if !ok {
			response.Fail(c, http.StatusForbidden, msgForbidden, "")
			return
		}

		if _, found := allowedSet[role]; !found {
			response.Fail(c, http.StatusForbidden, msgForbidden, "")
			return
		}
		c.Next()
	}
}
