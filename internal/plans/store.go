package plans

import (
	"context"
	"time"
)

// SessionStore persists sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}

// SessionLocker is implemented by stores shared between processes. TryLock claims the
// session until release is called or ttl passes; ok is false when someone else holds it.
type SessionLocker interface {
	TryLock(ctx context.Context, id string, ttl time.Duration) (release func(), ok bool, err error)
}
