package plans

import (
	"context"
	"sync"

	"escape-planner/internal/shared/telemetry"
)

// sessionLocks serialises work on one session inside this process.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func (l *sessionLocks) tryAcquire(id string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return nil, false
	}
	return l.take(id), true
}

// acquire waits for the session to be free.
func (l *sessionLocks) acquire(ctx context.Context, id string) (func(), error) {
	for {
		l.mu.Lock()
		done, busy := l.held[id]
		if !busy {
			release := l.take(id)
			l.mu.Unlock()
			return release, nil
		}
		l.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// take must be called with mu held.
func (l *sessionLocks) take(id string) func() {
	if l.held == nil {
		l.held = make(map[string]chan struct{})
	}
	done := make(chan struct{})
	l.held[id] = done
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, id)
			l.mu.Unlock()
			close(done)
		})
	}
}

// claim holds the session for one request or fails with ErrSessionBusy. wait blocks on the
// in-process lock instead of failing, for follow-up work queued behind the request.
func (s *Service) claim(ctx context.Context, sessionID string, wait bool) (func(), error) {
	var local func()
	if wait {
		release, err := s.locks.acquire(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		local = release
	} else {
		release, ok := s.locks.tryAcquire(sessionID)
		if !ok {
			return nil, ErrSessionBusy
		}
		local = release
	}

	locker, ok := s.Sessions.(SessionLocker)
	if !ok {
		return local, nil
	}
	shared, held, err := locker.TryLock(ctx, sessionID, staleAfter)
	if err != nil {
		local()
		return nil, err
	}
	if !held {
		local()
		telemetry.Info("plan.session_busy", map[string]any{"session_id": sessionID})
		return nil, ErrSessionBusy
	}
	return func() {
		shared()
		local()
	}, nil
}
