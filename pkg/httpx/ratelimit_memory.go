package httpx

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter is a per-process token bucket limiter. Good for a single
// replica and as the fallback when Redis is unreachable.
type MemoryLimiter struct {
	limiters sync.Map // profile name + key -> *rate.Limiter

	mu          sync.Mutex
	lastCleanup time.Time
	cleanEvery  time.Duration
}

// NewMemoryLimiter returns an empty MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{lastCleanup: time.Now(), cleanEvery: 5 * time.Minute}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, cfg RateLimitConfig, key string) Decision {
	burst := max(cfg.Burst, 1)
	lim := m.limiter(cfg, burst, cfg.Name+":"+key)

	if lim.Allow() {
		return Decision{Allowed: true, Limit: cfg.RequestsPerWindow, Remaining: max(int(lim.Tokens()), 0)}
	}

	// Ask when the next token lands without consuming it.
	res := lim.Reserve()
	delay := res.Delay()
	res.Cancel()

	return Decision{Allowed: false, Limit: cfg.RequestsPerWindow, RetryAfter: delay}
}

func (m *MemoryLimiter) limiter(cfg RateLimitConfig, burst int, key string) *rate.Limiter {
	if l, ok := m.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	perSecond := float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()
	l, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(perSecond), burst))
	m.maybeCleanup(burst)
	return l.(*rate.Limiter)
}

// maybeCleanup drops idle limiters so ephemeral keys do not pile up. A
// limiter whose bucket is full has not been used recently.
func (m *MemoryLimiter) maybeCleanup(burst int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCleanup) < m.cleanEvery {
		return
	}
	m.lastCleanup = time.Now()

	m.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(burst) {
			m.limiters.Delete(key)
		}
		return true
	})
}
