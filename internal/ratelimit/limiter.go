package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/polisa/internal/config"
)

const (
	EndpointQuote      = "quote"
	EndpointSubmission = "submission"
)

const keyEndpointClient = "polisa:ratelimit:%s:%s"

type Policy struct {
	PerMinute int64
	Burst     int64
}

func (p Policy) valid() bool {
	return p.PerMinute > 0 && p.Burst > 0
}

// Limiter applies per-endpoint token buckets keyed by client. A nil Limiter
// allows everything.
type Limiter struct {
	bucket   *TokenBucket
	policies map[string]Policy
}

func NewLimiter(cfg config.Config, client *redis.Client) *Limiter {
	if client == nil {
		return nil
	}
	return &Limiter{
		bucket: NewTokenBucket(client),
		policies: map[string]Policy{
			EndpointQuote:      {PerMinute: cfg.Redis.QuoteRatePerMinute, Burst: cfg.Redis.QuoteBurst},
			EndpointSubmission: {PerMinute: cfg.Redis.SubmissionRatePerMinute, Burst: cfg.Redis.SubmissionBurst},
		},
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes a token for client on endpoint. Endpoints without a positive
// policy are not limited.
func (l *Limiter) Allow(ctx context.Context, endpoint, client string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	policy, ok := l.policies[endpoint]
	if !ok || !policy.valid() {
		return &Result{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx,
		fmt.Sprintf(keyEndpointClient, endpoint, client),
		float64(policy.PerMinute)/60,
		int(policy.Burst),
	)
}
