package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "requestId"

	// RequestIDHeader carries a caller-supplied correlation id, echoed on every response.
	RequestIDHeader = "X-Request-Id"
)

// RequestID tags the request with the caller's X-Request-Id when it is a plain token,
// otherwise with a fresh UUID. The id follows the plan through generation and notification.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := cleanID(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id set by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}
