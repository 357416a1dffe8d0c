package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a client identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// PerKeyLimiter keeps one token bucket per client key. Buckets idle for
// longer than the eviction window are dropped to bound memory.
type PerKeyLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const evictAfter = 10 * time.Minute

func NewPerKeyLimiter(rps float64, burst int) *PerKeyLimiter {
	return &PerKeyLimiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *PerKeyLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) > 0 && len(l.buckets)%1024 == 0 {
			l.evictLocked(now)
		}
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

func (l *PerKeyLimiter) evictLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > evictAfter {
			delete(l.buckets, key)
		}
	}
}

// Unlimited never rejects; used when rate limiting is disabled.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
