package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger remembers sessions whose booking has been submitted, so older
// tokens of the same session cannot book again.  Entries only need to
// outlive the tokens issued before the submission, i.e. one token TTL.
type Ledger interface {
	// Claim marks id as submitted for ttl.  It reports false when id is
	// already marked.
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Release drops the mark of a submission that failed.
	Release(ctx context.Context, id string) error
	// Claimed reports whether id is marked.
	Claimed(ctx context.Context, id string) (bool, error)
}

// MemoryLedger is a process-local Ledger.
type MemoryLedger struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{expires: map[string]time.Time{}, now: time.Now}
}

func (l *MemoryLedger) Claim(_ context.Context, id string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, exp := range l.expires {
		if !now.Before(exp) {
			delete(l.expires, k)
		}
	}
	if _, ok := l.expires[id]; ok {
		return false, nil
	}
	l.expires[id] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLedger) Release(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, id)
	return nil
}

func (l *MemoryLedger) Claimed(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.expires[id]
	return ok && l.now().Before(exp), nil
}

// RedisLedger shares the ledger between instances.  Keys are
// prefix:id and expire on their own.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLedger(rdb *redis.Client, prefix string) *RedisLedger {
	if rdb == nil {
		panic("nil redis client passed to NewRedisLedger")
	}
	return &RedisLedger{rdb: rdb, prefix: prefix}
}

func (l *RedisLedger) key(id string) string { return l.prefix + ":" + id }

func (l *RedisLedger) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, l.key(id), 1, ttl).Result()
}

func (l *RedisLedger) Release(ctx context.Context, id string) error {
	return l.rdb.Del(ctx, l.key(id)).Err()
}

func (l *RedisLedger) Claimed(ctx context.Context, id string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key(id)).Result()
	return n > 0, err
}
