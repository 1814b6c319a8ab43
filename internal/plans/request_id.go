package plans

import (
	"context"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/llm"
	"escape-planner/internal/shared/server/middleware"
)

// RequestContext carries the request and session ids into the pipeline for logging.
func RequestContext(c *gin.Context) context.Context {
	return llm.WithTrace(c.Request.Context(), llm.Trace{
		RequestID: middleware.RequestIDFromContext(c),
		SessionID: middleware.SessionIDFromContext(c),
	})
}
