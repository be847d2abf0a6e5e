package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func (t *visitorTable) get(ip string, rps, burst int) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, exists := t.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		t.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (t *visitorTable) cleanup(ttl, interval time.Duration) {
	for {
		time.Sleep(interval)
		t.mu.Lock()
		for ip, v := range t.visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(t.visitors, ip)
			}
		}
		t.mu.Unlock()
	}
}

// RateLimiterMiddleware applies a per-IP token bucket. Stale buckets get
// evicted in the background so the table doesn't grow forever
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	table := &visitorTable{visitors: make(map[string]*visitor)}
	go table.cleanup(config.TTL, config.CleanupInterval)

	return func(c *gin.Context) {
		limiter := table.get(c.ClientIP(), config.RequestsPerSecond, config.Burst)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
