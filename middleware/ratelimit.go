package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tharo/api/metrics"
)

// ipLimiter hands out one token bucket per client IP. Entries are never
// evicted; at this traffic level the map stays small, and buckets are tiny.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newIPLimiter(perSec float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSec),
		burst:    burst,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// TrackRateLimit throttles the tracking endpoint per client IP. Capture
// clients are fire-and-forget, so a 429 is invisible to users; it only
// stops a single misbehaving client from flooding the store.
func TrackRateLimit(perSec float64, burst int, m *metrics.TrackingMetrics) gin.HandlerFunc {
	limiter := newIPLimiter(perSec, burst)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			if m != nil {
				m.RateLimited.Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many tracking requests"})
			return
		}
		c.Next()
	}
}
