// Package ratelimit provides per-key rate limiting for MCP tools on top of
// golang.org/x/time/rate.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key, all with the same rate and burst.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	nowFunc func() time.Time // injectable clock for testing
}

// NewLimiter creates a limiter refilling perSecond tokens per second up to
// burst. A new key starts with a full bucket.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute creates a limiter allowing n requests per minute.
func PerMinute(n, burst int) *Limiter {
	return NewLimiter(float64(n)/60.0, burst)
}

// Allow reports whether a request for key may proceed now, consuming one
// token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	now := l.nowFunc()
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

// Burst returns the bucket size.
func (l *Limiter) Burst() int { return l.burst }

// Rate returns the refill rate in tokens per second.
func (l *Limiter) Rate() float64 { return float64(l.limit) }

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default per-tool limiters. Estimation tools
// get tighter limits than listing tools.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"samplespace_scenarios":    PerMinute(60, 10),
		"samplespace_history":      PerMinute(60, 10),
		"samplespace_probability":  PerMinute(30, 5),
		"samplespace_moment":       PerMinute(30, 5),
		"samplespace_describe":     PerMinute(30, 5),
		"samplespace_distribution": PerMinute(10, 3),
	}
}

// CheckLimit returns an error if toolName is over its limit. Tools without a
// configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
