package notify

import (
	"context"
	"sync"
)

const defaultMemoryAttemptCap = 500

// MemoryAttemptRepo keeps the most recent attempts in memory and is safe for concurrent use.
type MemoryAttemptRepo struct {
	mu       sync.RWMutex
	items    []Attempt
	maxItems int
}

// NewMemoryAttemptRepo constructs a MemoryAttemptRepo holding at most capacity attempts.
func NewMemoryAttemptRepo(capacity int) *MemoryAttemptRepo {
	if capacity <= 0 {
		capacity = defaultMemoryAttemptCap
	}
	return &MemoryAttemptRepo{maxItems: capacity}
}

// Record stores the attempt, dropping the oldest when full.
func (r *MemoryAttemptRepo) Record(ctx context.Context, attempt Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, attempt)
	if over := len(r.items) - r.maxItems; over > 0 {
		r.items = append([]Attempt(nil), r.items[over:]...)
	}
	return nil
}

// ListRecent returns up to limit attempts, newest first.
func (r *MemoryAttemptRepo) ListRecent(ctx context.Context, limit int) ([]Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.items) {
		limit = len(r.items)
	}
	out := make([]Attempt, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}
