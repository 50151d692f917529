package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"admissions_backend/pkg/apperrors"
)

// Limit is a token bucket rule: Rate events per Period with Burst headroom.
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// RateLimiter keeps one token bucket per key in memory.
type RateLimiter struct {
	mu      sync.Mutex
	limit   Limit
	buckets map[string]*bucket
	idleTTL time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit Limit) *RateLimiter {
	if limit.Rate <= 0 {
		limit.Rate = 1
	}
	if limit.Period <= 0 {
		limit.Period = time.Minute
	}
	if limit.Burst <= 0 {
		limit.Burst = limit.Rate
	}
	return &RateLimiter{
		limit:   limit,
		buckets: make(map[string]*bucket),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow consumes a token for key and reports whether the request may proceed.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.limit.Period / time.Duration(l.limit.Rate))
		b = &bucket{limiter: rate.NewLimiter(every, l.limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, l.limit.Period
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops buckets idle for longer than the TTL.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retry := l.Allow(c.ClientIP())
		if !allowed {
			seconds := int(retry.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			apperrors.HandleError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
