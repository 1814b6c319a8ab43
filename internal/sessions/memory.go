package sessions

import (
	"context"
	"sync"
	"time"

	"escape-planner/internal/plans"
)

type memoryEntry struct {
	session   plans.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are dropped on access and by Sweep.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (plans.Session, error) {
	if err := ctx.Err(); err != nil {
		return plans.Session{}, err
	}
	s.mu.RLock()
	entry, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return plans.Session{}, plans.ErrSessionNotFound
	}
	if s.expired(entry) {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return plans.Session{}, plans.ErrSessionNotFound
	}
	return entry.session, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess plans.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := memoryEntry{session: sess}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[sess.ID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, entry := range s.items {
		if s.expired(entry) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
