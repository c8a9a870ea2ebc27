package middleware

import (
	"strconv"
	"time"

	"rizzpay-gateway/internal/adapter/storage/redis"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RateLimitRule is one fixed-window limit.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the per-route-group limits. Webhooks get the
// widest window: a bank replaying a settlement batch must not be throttled
// into retry storms.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"webhook":   {Limit: 300, Window: time.Minute},
		"auth":      {Limit: 10, Window: time.Minute},
		"payment":   {Limit: 60, Window: time.Minute},
		"dashboard": {Limit: 120, Window: time.Minute},
	}
}

// RateLimiter enforces a fixed-window limit per caller within a route group.
// Authenticated callers are keyed by merchant ID, anonymous ones by client
// IP. Redis outages fail open: throttling is protection, not correctness.
func RateLimiter(store *redis.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := group + ":" + extractIdentifier(c)

		res, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit store unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt, 10))

		if !res.Allowed {
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractIdentifier keys the limit by merchant when authenticated, else by IP.
func extractIdentifier(c *gin.Context) string {
	if v, ok := c.Get(CtxMerchantID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id.String()
		}
	}
	return c.ClientIP()
}
