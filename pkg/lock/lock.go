// Package lock serializes turns per conversation thread. One traversal
// exclusively owns a thread's state; a second question on the same thread
// while a turn is in flight is rejected rather than queued.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked means another turn currently owns the thread.
var ErrLocked = errors.New("thread is locked by an in-flight turn")

type TurnLock interface {
	// Acquire takes the thread lock or returns ErrLocked.
	Acquire(ctx context.Context, threadId string) error
	Release(ctx context.Context, threadId string)
}

// RedisLock implements the lock with SETNX + TTL so stale locks from
// crashed processes expire on their own.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLock{client: client, ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context, threadId string) error {
	ok, err := l.client.SetNX(ctx, lockKey(threadId), "1", l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (l *RedisLock) Release(ctx context.Context, threadId string) {
	l.client.Del(ctx, lockKey(threadId))
}

func lockKey(threadId string) string {
	return "turnlock:" + threadId
}

// LocalLock is the in-process fallback when redis is not configured or
// unreachable. It protects a single process only.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	ttl  time.Duration
}

func NewLocalLock(ttl time.Duration) *LocalLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &LocalLock{
		held: make(map[string]time.Time),
		ttl:  ttl,
	}
}

func (l *LocalLock) Acquire(ctx context.Context, threadId string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if at, ok := l.held[threadId]; ok && time.Since(at) < l.ttl {
		return ErrLocked
	}
	l.held[threadId] = time.Now()
	return nil
}

func (l *LocalLock) Release(ctx context.Context, threadId string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, threadId)
}
