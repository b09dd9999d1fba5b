package httpx

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fixed window counter: the first hit in a window sets its expiry.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares counters between replicas through Redis. On any
// Redis error it degrades to its in-memory fallback.
type RedisLimiter struct {
	Client   redis.Scripter
	Prefix   string
	Timeout  time.Duration
	Fallback Limiter
	Log      *slog.Logger
}

// NewRedisLimiter builds a RedisLimiter with a MemoryLimiter fallback.
func NewRedisLimiter(client redis.Scripter, log *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		Client:   client,
		Prefix:   "vistoria:rl:",
		Timeout:  250 * time.Millisecond,
		Fallback: NewMemoryLimiter(),
		Log:      log,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, cfg RateLimitConfig, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	res, err := fixedWindowScript.Run(ctx, l.Client,
		[]string{l.Prefix + cfg.Name + ":" + key},
		cfg.Window.Milliseconds(),
	).Int64Slice()
	if err != nil || len(res) < 2 {
		if l.Log != nil {
			l.Log.Warn("rate limit: redis unavailable, using memory fallback", "err", err)
		}
		return l.Fallback.Allow(ctx, cfg, key)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = cfg.Window
	}

	remaining := max(cfg.RequestsPerWindow-int(count), 0)
	d := Decision{
		Allowed:   int(count) <= cfg.RequestsPerWindow,
		Limit:     cfg.RequestsPerWindow,
		Remaining: remaining,
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d
}
