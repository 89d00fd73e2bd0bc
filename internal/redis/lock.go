package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("negotiation lock not acquired")

// Locker guards a negotiation run so that concurrent requests for the same
// participant set do not negotiate twice.
type Locker interface {
	WithNegotiationLock(ctx context.Context, participants []string, fn func(ctx context.Context) error) error
}

type redisNegotiationLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisNegotiationLocker creates a locker keyed by the sorted participant
// set.
func NewRedisNegotiationLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisNegotiationLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisNegotiationLocker) WithNegotiationLock(ctx context.Context, participants []string, fn func(ctx context.Context) error) error {
	key := lockKey(participants)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire negotiation lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func lockKey(participants []string) string {
	sorted := append([]string(nil), participants...)
	sort.Strings(sorted)
	return "lock:negotiation:" + strings.Join(sorted, ",")
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisNegotiationLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release negotiation lock: %w", err)
	}
	return nil
}

// NopLocker runs the critical section without locking. Used by tests and
// offline tooling that has no Redis.
type NopLocker struct{}

func (NopLocker) WithNegotiationLock(ctx context.Context, _ []string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
