package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/shared/server/respond"
	"escape-planner/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":    RequestIDFromContext(c),
			"session_id":    SessionIDFromContext(c),
			"submission_id": c.GetString(respond.SubmissionIDKey),
			"session_state": c.GetString(respond.SessionStateKey),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"duration_ms":   float64(latency.Microseconds()) / 1000.0,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		})
	}
}
