package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"talent-marketplace/internal/delivery/http/response"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc picks the bucket of a request. Default: client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests with 503 while Redis is failing instead of counting in memory.
	FailClosed bool
	// Reject writes the 429 response. Default: JSON envelope.
	Reject func(c *gin.Context, retryAfter int)
}

// fixedWindowScript increments a counter and starts its TTL on the first hit.
// Returns {count, ttl_seconds}.
const fixedWindowScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`

// DefaultRateLimitConfig returns the global per-IP limit
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}
}

// AuthRateLimitConfig is the per-IP limit of sign-in, sign-up and password reset.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 10
	}
	cfg := DefaultRateLimitConfig(limit, window)
	cfg.KeyPrefix = "rl:auth:"
	cfg.FailClosed = true
	return cfg
}

// memoryWindows is the fixed-window counter used without Redis.
// Expired windows are pruned on access.
type memoryWindows struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastPrune time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func newMemoryWindows() *memoryWindows {
	return &memoryWindows{windows: make(map[string]*window)}
}

func (m *memoryWindows) hit(key string, length time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastPrune) > length {
		for k, w := range m.windows {
			if now.After(w.resetAt) {
				delete(m.windows, k)
			}
		}
		m.lastPrune = now
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(length)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

// RateLimitMiddleware counts requests per key in Redis, or in memory when the client is nil
// or, for fail-open configs, when Redis errors.
func RateLimitMiddleware(redisClient *goredis.Client, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Reject == nil {
		config.Reject = func(c *gin.Context, _ int) {
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}
	}
	memory := newMemoryWindows()

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var (
			count   int
			resetAt time.Time
			err     error
		)
		if redisClient != nil {
			count, resetAt, err = redisWindow(c.Request.Context(), redisClient, key, config.Window, now)
		}
		switch {
		case redisClient != nil && err == nil:
		case err != nil && config.FailClosed:
			logRedisFailure(c, err)
			response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
			c.Abort()
			return
		default:
			count, resetAt = memory.hit(key, config.Window, now)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			meta := domain.ClientMetaFrom(c.Request.Context())
			security.DefaultLogger().LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), meta.UserAgent, meta.RequestID, c.FullPath())
			config.Reject(c, retryAfter)
			c.Abort()
			return
		}

		c.Next()
	}
}

func redisWindow(ctx context.Context, client *goredis.Client, key string, length time.Duration, now time.Time) (int, time.Time, error) {
	res, err := client.Eval(ctx, fixedWindowScript, []string{key}, int(length.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), now.Add(time.Duration(ttl) * time.Second), nil
}

func logRedisFailure(c *gin.Context, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		Details:     map[string]interface{}{"error_type": "redis_error", "error": err.Error()},
	})
}
