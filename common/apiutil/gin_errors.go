package apiutil

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON error body used by the status endpoints
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteErrorResponse writes a JSON error response to the client
func WriteErrorResponse(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// WriteTextError writes a plain-text error page. The HTML routes answer
// failures this way instead of with JSON.
func WriteTextError(c *gin.Context, status int, message string) {
	c.Abort()
	c.String(status, message)
}
