package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"github.com/smallbiznis/polisa/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLimiter),
	fx.Provide(NewLocker),
	fx.Provide(NewSubmissionLock),
	fx.Provide(submissionLock),
)

func submissionLock(l *SubmissionLock) appdomain.SubmissionLock {
	if l == nil {
		return nil
	}
	return l
}

// NewRedisClient returns nil when no Redis address is configured, which
// disables rate limiting and submission locks.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled() {
		log.Named("ratelimit").Info("redis not configured, rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}
