package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/FaizaanMd/cinema-booking/internal/config"
)

// takeScript refills the bucket at KEYS[1] by whole intervals and takes
// one token.  ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens left, ms until the next token}.
var takeScript = redis.NewScript(`
local now, cap, refill, step, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'left', 'at')
local left, at = tonumber(b[1]), tonumber(b[2])
if left == nil or at == nil then
  left, at = cap, now
end
local n = math.floor(math.max(0, now - at) / step)
if n > 0 then
  left = math.min(cap, left + n * refill)
  at = at + n * step
end
local ok, wait = 0, 0
if left > 0 then
  ok, left = 1, left - 1
else
  wait = math.max(0, step - (now - at))
end
redis.call('HSET', KEYS[1], 'left', left, 'at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, left, wait}
`)

// bucketState is the outcome of taking one token.
type bucketState struct {
	Allowed bool
	Left    int64
	Wait    time.Duration
}

func take(ctx context.Context, rdb *redis.Client, key string, cfg config.RateLimitConfig, now time.Time) (bucketState, error) {
	vals, err := takeScript.Run(ctx, rdb, []string{key},
		now.UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketState{}, err
	}
	if len(vals) != 3 {
		return bucketState{}, fmt.Errorf("ratelimit: unexpected script result %v", vals)
	}
	return bucketState{
		Allowed: vals[0] == 1,
		Left:    vals[1],
		Wait:    time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket rate limits requests with a token bucket kept in Redis,
// one bucket per key built from cfg.Scope.  It fails open: when Redis
// errors the request goes through.  Blocked requests get 429 with
// Retry-After.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := bucketKey(cfg, c)
			st, err := take(c.Request().Context(), rdb, key, cfg, time.Now())
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: %s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.Left, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if st.Allowed {
				return next(c)
			}

			secs := retryAfterSeconds(st.Wait)
			h.Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit: blocked %s for %ds", key, secs)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":      "too many requests, please slow down",
				"retryAfter": secs,
			})
		}
	}
}

// retryAfterSeconds rounds up to whole seconds.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// bucketKey joins the prefix with one name:value pair per scope part, for
// example "rl:ip:10.0.0.7:session:anon".
func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	for _, s := range cfg.Scope {
		switch s {
		case config.ScopeIP:
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			parts = append(parts, s, ip)
		case config.ScopeSession:
			parts = append(parts, s, currentSessionID(c))
		case config.ScopeRoute:
			parts = append(parts, s, c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}

// currentSessionID is "anon" until BookingSession has run.
func currentSessionID(c echo.Context) string {
	if s, ok := SessionFrom(c); ok && s.ID != "" {
		return s.ID
	}
	return "anon"
}
