package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cycleLockKey = "tender-scout:cycle-lock"

// CycleLock keeps concurrent crawl cycles from overlapping across instances.
// Without redis it degrades to a process-local mutex, which still keeps the
// cron run and an API-triggered run from crawling at the same time.
type CycleLock struct {
	client *redis.Client
	logger *zap.SugaredLogger
	local  sync.Mutex
}

func NewCycleLock(client *redis.Client, logger *zap.SugaredLogger) *CycleLock {
	return &CycleLock{client: client, logger: logger}
}

// Acquire takes the lock for ttl. The release func is a no-op when the lock
// was lost or never held.
func (l *CycleLock) Acquire(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error) {
	if l.client == nil {
		if !l.local.TryLock() {
			return nil, false, nil
		}
		return l.local.Unlock, true, nil
	}

	token := uuid.NewString()
	ok, err = l.client.SetNX(ctx, cycleLockKey, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// Delete only our own token; an expired lock may belong to someone else.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		if err := l.client.Eval(context.Background(), script, []string{cycleLockKey}, token).Err(); err != nil {
			l.logger.Warnw("cycle_lock_release_failed", "err", err)
		}
	}
	return release, true, nil
}
