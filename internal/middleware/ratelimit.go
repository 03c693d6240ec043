package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/mercado-storefront/internal/config"
)

// takeToken refills the bucket by whole intervals since its last refill and
// then tries to spend one token.
//
// KEYS[1] bucket hash; ARGV: now_ms, burst, every_ms, ttl_ms.
// Reply: {allowed (0|1), tokens left, wait_ms until the next token}.
var takeToken = redis.NewScript(`
local now   = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local every = tonumber(ARGV[3])

local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(b[1])
local ts = tonumber(b[2])
if tokens == nil or ts == nil then
  tokens = burst
  ts = now
end

local gained = math.floor((now - ts) / every)
if gained > 0 then
  tokens = math.min(burst, tokens + gained)
  ts = ts + gained * every
end

local allowed = 0
local wait = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = every - (now - ts)
  if wait < 0 then wait = 0 end
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, tokens, wait}
`)

type bucketReply struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	now func() time.Time
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketReply, error) {
	vals, err := takeToken.Run(ctx, b.rdb, []string{key},
		b.now().UnixMilli(),
		b.cfg.Burst,
		b.cfg.Every.Milliseconds(),
		b.cfg.KeyTTL().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return bucketReply{}, err
	}
	if len(vals) != 3 {
		return bucketReply{}, fmt.Errorf("unexpected bucket reply %v", vals)
	}
	return bucketReply{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		wait:      time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// key is per client IP, and per route too when PerRoute is set, so login
// attempts do not use up the register budget.
func (b *tokenBucket) key(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	if b.cfg.PerRoute {
		return b.cfg.Prefix + ":" + ip + ":" + c.Path()
	}
	return b.cfg.Prefix + ":" + ip
}

// NewTokenBucket throttles the credential endpoints with a token bucket kept
// in Redis, so every instance shares one budget per client.  A nil client
// or a disabled config turns it into a passthrough.  Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return newTokenBucket(cfg, rdb, time.Now)
}

func newTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, now func() time.Time) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := &tokenBucket{cfg: cfg.Normalized(), rdb: rdb, now: now}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := b.key(c)
			r, err := b.take(c.Request().Context(), key)
			if err != nil {
				log.Printf("ratelimit: %s: %v (allowing request)", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.Burst))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(r.remaining, 10))
			if r.allowed {
				return next(c)
			}

			secs := int((r.wait + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "TooManyRequests",
				"message":     "too many attempts, try again later",
				"code":        http.StatusTooManyRequests,
				"retry_after": secs,
			})
		}
	}
}
