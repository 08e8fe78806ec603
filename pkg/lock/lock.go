package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of the Redis API the lock needs. *redis.Client satisfies it.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SemesterLock serialises schedule generation per semester using a Redis
// advisory lock. Generation is single-writer: two concurrent runs for the same
// semester would race on the destructive replace, so callers must hold the
// lock for the full generate-and-save cycle.
//
// With a nil client every acquire succeeds, matching single-instance
// deployments that have no Redis.
type SemesterLock struct {
	client Client
	ttl    time.Duration
}

// NewSemesterLock constructs the lock with the given TTL.
func NewSemesterLock(client Client, ttl time.Duration) *SemesterLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SemesterLock{client: client, ttl: ttl}
}

// Acquire takes the lock for a semester. It returns false when another
// generation currently holds it.
func (l *SemesterLock) Acquire(ctx context.Context, semesterID int64) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, lockKey(semesterID), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire semester lock %d: %w", semesterID, err)
	}
	return ok, nil
}

// Release frees the lock. Safe to call even when Acquire returned false.
func (l *SemesterLock) Release(ctx context.Context, semesterID int64) error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := l.client.Del(ctx, lockKey(semesterID)).Err(); err != nil {
		return fmt.Errorf("release semester lock %d: %w", semesterID, err)
	}
	return nil
}

func lockKey(semesterID int64) string {
	return fmt.Sprintf("scheduler:generation-lock:%d", semesterID)
}
