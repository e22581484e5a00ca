package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/auth"
	"github.com/risick/microcredito-api/internal/http/response"
)

const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextUserEmail = "user_email"

	msgTokenRequired = "Token de acesso necessário"
	msgTokenInvalid  = "Invalid or expired token"
)

// RequireAuth accepts a Bearer access token, falling back to the access
// cookie when allowCookie is set. A missing token is 401, a bad one 403.
func RequireAuth(jwt *auth.JWTManager, allowCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowCookie {
			if cookie, err := c.Request.Cookie(auth.AccessCookieName); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, msgTokenRequired, "")
			return
		}

		claims, err := jwt.Parse(token)
		if err != nil || claims.Type != auth.TokenTypeAccess {
			response.Fail(c, http.StatusForbidden, msgTokenInvalid, "")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
