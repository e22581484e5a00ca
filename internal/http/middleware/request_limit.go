package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/http/response"
)

// RequestBodyLimit rejects declared oversize bodies up front and caps the
// rest with MaxBytesReader so JSON binding fails past maxBytes.
func RequestBodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Fail(c, http.StatusRequestEntityTooLarge, "Corpo da requisição muito grande", "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
