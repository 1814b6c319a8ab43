package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"escape-planner/internal/plans"
	"escape-planner/internal/shared/telemetry"
)

const (
	keyPrefix  = "escape:session:"
	lockPrefix = "escape:lock:"
)

// unlockScript deletes the lock only while it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a client with the pool settings used across the services.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// RedisStore keeps sessions as JSON under escape:session:<id>, refreshed on every save.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (plans.Session, error) {
	raw, err := s.Client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return plans.Session{}, plans.ErrSessionNotFound
	}
	if err != nil {
		return plans.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var sess plans.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return plans.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess plans.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.Client.Set(ctx, key(sess.ID), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// TryLock claims the session with SET NX. The lock expires after ttl if release is never called.
func (s *RedisStore) TryLock(ctx context.Context, id string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := s.Client.SetNX(ctx, lockPrefix+id, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock session: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, s.Client, []string{lockPrefix + id}, token).Err(); err != nil {
			telemetry.Warn("session.unlock_failed", map[string]any{"session_id": id, "error": err.Error()})
		}
	}
	return release, true, nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

func key(id string) string {
	return keyPrefix + id
}
