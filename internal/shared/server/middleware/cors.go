package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/shared/server/respond"
)

var (
	corsAllowHeaders = strings.Join([]string{"Content-Type", SessionHeader, RequestIDHeader}, ", ")
	// Browsers hide response headers from scripts unless they are listed here.
	corsExposeHeaders = strings.Join([]string{
		RequestIDHeader,
		SessionHeader,
		respond.SubmissionHeader,
		"Content-Disposition",
		"X-Document-Pages",
		"X-Notify-Status",
		"Retry-After",
	}, ", ")
)

// CORS lets the listed origins call the API with the session cookie. "*" admits any
// origin but then credentials are not allowed, as browsers require. Preflights end here.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	exact := make(map[string]bool)
	wildcard := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			exact[o] = true
		}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			switch {
			case exact[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				origin = ""
			}
			if origin != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				h.Set("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
