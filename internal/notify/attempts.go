package notify

import (
	"context"
	"time"
)

// Attempt is one observed target call. The contact is stored only as a hash.
type Attempt struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	SubmissionID string    `json:"submissionId"`
	Target       string    `json:"target"`
	Status       string    `json:"status"`
	StatusCode   int       `json:"statusCode"`
	Error        string    `json:"error,omitempty"`
	ContactHash  string    `json:"contactHash"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AttemptRepo records notification attempts for later inspection.
type AttemptRepo interface {
	Record(ctx context.Context, attempt Attempt) error
	ListRecent(ctx context.Context, limit int) ([]Attempt, error)
}
