package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/shared/telemetry"
)

// Keys set by the request id and session middleware.
const (
	requestIDKey = "requestId"
	sessionIDKey = "sessionId"
)

// ErrorBody is the error object every failed API call returns. RequestID lets a visitor
// quote the failure when asking for help.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts the request with the error envelope and logs it. Server faults log at
// error level, rate limiting at info and other client mistakes at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	requestID := c.GetString(requestIDKey)
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": requestID,
	}
	for field, key := range map[string]string{
		"session_id":    sessionIDKey,
		"submission_id": SubmissionIDKey,
		"session_state": SessionStateKey,
	} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}

	switch {
	case status >= http.StatusInternalServerError:
		fields["message"] = message
		telemetry.Error("http.error", fields)
	case status == http.StatusTooManyRequests:
		telemetry.Info("http.error", fields)
	default:
		telemetry.Warn("http.error", fields)
	}

	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
	}})
}
