// Package response writes the JSON envelope shared by every /api route.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/pagination"
)

type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Page(c *gin.Context, status int, message string, data any, meta pagination.Meta) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data, Pagination: &meta})
}

// Fail aborts the handler chain with an error envelope.
func Fail(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Error: detail})
}
