package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/polisa/internal/config"
	"go.uber.org/zap"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const lockKeyPrefix = "polisa:lock:"

// Locker is a single-instance Redis lock. Release only deletes the key
// while it still holds the caller's token.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// SubmissionLock guards application submissions. A nil SubmissionLock
// always grants the lock.
type SubmissionLock struct {
	locker *Locker
	ttl    time.Duration
	log    *zap.Logger
}

func NewSubmissionLock(cfg config.Config, client *redis.Client, log *zap.Logger) *SubmissionLock {
	if client == nil {
		return nil
	}
	ttl := time.Duration(cfg.Redis.SubmissionLockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &SubmissionLock{
		locker: NewLocker(client),
		ttl:    ttl,
		log:    log.Named("ratelimit.lock"),
	}
}

func (s *SubmissionLock) Acquire(ctx context.Context, key string) (func(), bool, error) {
	if s == nil {
		return func() {}, true, nil
	}
	key = lockKeyPrefix + key
	token, ok, err := s.locker.TryLock(ctx, key, s.ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		// the request context may already be cancelled
		if err := s.locker.Release(context.Background(), key, token); err != nil {
			s.log.Warn("release submission lock", zap.String("key", key), zap.Error(err))
		}
	}, true, nil
}
