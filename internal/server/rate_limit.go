package server

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/polisa/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	"github.com/smallbiznis/polisa/internal/ratelimit"
	"go.uber.org/zap"
)

const rateLimitReasonClientRate = "client-rate"

// RateLimit applies the endpoint's token bucket keyed by client IP. A
// limiter failure rejects the request rather than letting it through.
func (s *Server) RateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		result, err := s.limiter.Allow(ctx, endpoint, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("rate limit check failed", zap.String("endpoint", endpoint), zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if result == nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			denyRateLimit(c, endpoint, result, s.obsMetrics)
			return
		}
		c.Next()
	}
}

func denyRateLimit(c *gin.Context, endpoint string, result *ratelimit.Result, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("rate limit exceeded",
		zap.String("reason", rateLimitReasonClientRate),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, rateLimitReasonClientRate, metrics)

	retry := int(math.Ceil(result.RetryAfter.Seconds()))
	if retry < 1 {
		retry = 1
	}
	c.Header("Retry-After", strconv.Itoa(retry))
	c.Header("X-Rate-Limited-Reason", rateLimitReasonClientRate)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}
