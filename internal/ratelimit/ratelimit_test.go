package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/polisa/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTokenBucketDeniesAfterBurst(t *testing.T) {
	mr, client := newRedis(t)
	start := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	mr.SetTime(start)

	bucket := NewTokenBucket(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := bucket.Allow(ctx, "k", 1, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := bucket.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, time.Second, res.RetryAfter)

	mr.SetTime(start.Add(1500 * time.Millisecond))
	res, err = bucket.Allow(ctx, "k", 1, 2)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestTokenBucketRejectsBadArguments(t *testing.T) {
	_, client := newRedis(t)
	bucket := NewTokenBucket(client)

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)
	_, err = bucket.Allow(context.Background(), "k", 0, 1)
	assert.Error(t, err)

	var none *TokenBucket
	_, err = none.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}

func TestLimiterPerEndpointAndClient(t *testing.T) {
	_, client := newRedis(t)
	cfg := config.Config{Redis: config.RedisConfig{
		QuoteRatePerMinute:      60,
		QuoteBurst:              1,
		SubmissionRatePerMinute: 0,
	}}
	limiter := NewLimiter(cfg, client)
	require.True(t, limiter.Enabled())
	ctx := context.Background()

	res, err := limiter.Allow(ctx, EndpointQuote, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = limiter.Allow(ctx, EndpointQuote, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, EndpointQuote, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// no policy configured for submissions
	for i := 0; i < 3; i++ {
		res, err = limiter.Allow(ctx, EndpointSubmission, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}

func TestLimiterDisabledWithoutRedis(t *testing.T) {
	limiter := NewLimiter(config.Config{}, nil)
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), EndpointQuote, "x")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestSubmissionLock(t *testing.T) {
	mr, client := newRedis(t)
	cfg := config.Config{Redis: config.RedisConfig{SubmissionLockTTLSeconds: 5}}
	lock := NewSubmissionLock(cfg, client, zap.NewNop())
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, "submission:1:ABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(lockKeyPrefix+"submission:1:ABC"))

	_, ok, err = lock.Acquire(ctx, "submission:1:ABC")
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, mr.Exists(lockKeyPrefix+"submission:1:ABC"))

	_, ok, err = lock.Acquire(ctx, "submission:1:ABC")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(6 * time.Second)
	_, ok, err = lock.Acquire(ctx, "submission:1:ABC")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	mr, client := newRedis(t)
	locker := NewLocker(client)
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "k", "someone-else"))
	assert.True(t, mr.Exists("k"))
}

func TestNilSubmissionLockGrants(t *testing.T) {
	var lock *SubmissionLock
	release, ok, err := lock.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}
