package notify

import (
	"context"
	"database/sql"
)

// PGAttemptRepo implements AttemptRepo using Postgres.
type PGAttemptRepo struct {
	DB *sql.DB
}

// Record inserts the attempt.
func (r *PGAttemptRepo) Record(ctx context.Context, a Attempt) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO notify_attempts (id, session_id, submission_id, target, status, status_code, error, contact_hash, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.SessionID, a.SubmissionID, a.Target, a.Status, a.StatusCode, a.Error, a.ContactHash, a.DurationMs, a.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit attempts, newest first.
func (r *PGAttemptRepo) ListRecent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, session_id, submission_id, target, status, status_code, error, contact_hash, duration_ms, created_at
FROM notify_attempts
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.SubmissionID, &a.Target, &a.Status, &a.StatusCode, &a.Error, &a.ContactHash, &a.DurationMs, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
