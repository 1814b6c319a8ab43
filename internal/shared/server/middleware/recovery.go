package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/shared/server/respond"
	"escape-planner/internal/shared/telemetry"
)

// Recovery turns a handler panic into the JSON error envelope and one structured log line.
// gin already drops connections the client closed, so only real panics reach the log.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"session_id": SessionIDFromContext(c),
			"route":      c.FullPath(),
			"method":     c.Request.Method,
			"panic":      fmt.Sprint(rec),
			"stack":      string(debug.Stack()),
		})
		if c.Writer.Written() {
			c.Abort()
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	})
}
