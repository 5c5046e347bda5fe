package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StageLock serializes stage mutations for one user so double submits and
// concurrent finalize calls cannot interleave. Acquire blocks until the lock
// is held or the context expires; the returned function releases it.
type StageLock interface {
	Acquire(ctx context.Context, userID string) (release func(), err error)
}

const redisStageUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisScripter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisStageLock struct {
	client redisScripter
	ttl    time.Duration
	prefix string
}

// NewRedisStageLock builds a Redis-backed lock usable across replicas.
func NewRedisStageLock(client *redis.Client, ttl time.Duration) StageLock {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisStageLock{
		client: client,
		ttl:    ttl,
		prefix: "assessment:lock:",
	}
}

func (l *redisStageLock) Acquire(ctx context.Context, userID string) (func(), error) {
	key := l.prefix + strings.TrimSpace(userID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		l.client.Eval(releaseCtx, redisStageUnlockScript, []string{key}, token)
	}
	return release, nil
}

// memoryStageLock is the single-process fallback: one mutex per user.
type memoryStageLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryStageLock builds the in-process lock used when Redis is not
// configured.
func NewMemoryStageLock() StageLock {
	return &memoryStageLock{locks: make(map[string]*sync.Mutex)}
}

func (l *memoryStageLock) Acquire(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
