// ratelimit_redis.go provides a Redis-backed rate limiter for deployments
// running more than one replica, where the in-process token bucket would give
// each replica its own budget. It uses the GCRA algorithm via redis_rate so
// limits are shared and race-free across instances.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces shared rate limits through a Redis instance.
type RedisRateLimiter struct {
	client  *redis.Client
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	perMin  int
}

// NewRedisRateLimiter connects to the given Redis address and returns a
// limiter enforcing requestsPerMinute with the given burst.
func NewRedisRateLimiter(addr, password string, requestsPerMinute, burst int) *RedisRateLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisRateLimiter{
		client:  client,
		limiter: redis_rate.NewLimiter(client),
		limit: redis_rate.Limit{
			Rate:   requestsPerMinute,
			Burst:  burst,
			Period: time.Minute,
		},
		perMin: requestsPerMinute,
	}
}

// Stop closes the underlying Redis connection.
func (rl *RedisRateLimiter) Stop() {
	if err := rl.client.Close(); err != nil {
		slog.Warn("closing redis rate limiter client", "error", err)
	}
}

// RedisRateLimitMiddleware rejects requests over the shared limit with 429.
// If Redis itself is unreachable the request is allowed through: losing rate
// limiting briefly is preferable to taking the whole site down with it.
func RedisRateLimitMiddleware(rl *RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getRateLimitKey(c)

		res, err := rl.limiter.Allow(c.Request.Context(), key, rl.limit)
		if err != nil {
			slog.Warn("redis rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.perMin))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
