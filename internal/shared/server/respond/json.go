package respond

import (
	"github.com/gin-gonic/gin"
)

// Context keys the request log reads to report where a request left the pipeline.
const (
	SubmissionIDKey = "submissionId"
	SessionStateKey = "sessionState"

	// SubmissionHeader echoes the submission a response belongs to.
	SubmissionHeader = "X-Submission-Id"
)

// Annotate records the submission and session state a request ended in. Empty values are
// skipped so an early failure does not blank out what an earlier step set.
func Annotate(c *gin.Context, submissionID, state string) {
	if submissionID != "" {
		c.Set(SubmissionIDKey, submissionID)
		c.Header(SubmissionHeader, submissionID)
	}
	if state != "" {
		c.Set(SessionStateKey, state)
	}
}

// JSON writes payload with the given status. Bodies describe one visitor's session, so
// shared caches must not keep them.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}
