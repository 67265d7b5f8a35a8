package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter counts requests per caller in fixed windows. Expired windows are
// swept lazily on the allow path, so no background goroutine is needed.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*window
	limit   int
	period  time.Duration
	sweepAt time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

func (r *RateLimiter) Allow(key string) bool {
	return r.allowAt(key, time.Now())
}

func (r *RateLimiter) allowAt(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.After(r.sweepAt) {
		for k, w := range r.callers {
			if now.Sub(w.start) >= r.period {
				delete(r.callers, k)
			}
		}
		r.sweepAt = now.Add(r.period)
	}
	w := r.callers[key]
	if w == nil || now.Sub(w.start) >= r.period {
		r.callers[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= r.limit {
		return false
	}
	w.count++
	return true
}

// callerKey prefers the authenticated user over the client IP so that users
// behind a shared NAT do not exhaust each other's quota.
func callerKey(c *gin.Context) string {
	if id := GetUserID(c); id != 0 {
		return "u:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.ClientIP()
}

// RateLimit limits requests per authenticated user, falling back to client IP
// for unauthenticated routes.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(callerKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
