// ratelimit.go implements per-client rate limiting for the upload endpoint.
//
// This API has no accounts or API keys, so the client IP is the only
// identity we have. Each IP gets a token bucket (golang.org/x/time/rate):
// requests consume tokens, tokens refill at a steady rate, and an empty
// bucket means 429 Too Many Requests. Uploads fan out into LLM calls
// that cost real money, which is why only POST /extract is limited —
// status polling stays unthrottled.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
}

// clientLimiter pairs a bucket with its last use so cleanup can drop
// idle entries.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second
// with the given burst per client IP.
func NewRateLimiter(rps, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}

	// Start background cleanup goroutine
	go rl.cleanup()

	return rl
}

// RateLimit returns Gin middleware that enforces the per-IP limit.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Go Pattern: gin's ClientIP respects X-Forwarded-For from
		// trusted proxies, so this works behind a load balancer too.
		lim := rl.limiterFor(c.ClientIP())

		if !lim.Allow() {
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			c.Header("X-RateLimit-Remaining", "0")
			c.JSON(http.StatusTooManyRequests, models.NewUploadError("Too many requests"))
			c.Abort()
			return
		}

		// Add rate limit headers so clients know their limits
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))

		c.Next()
	}
}

// limiterFor returns the bucket for an IP, creating it on first sight.
func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// cleanup periodically removes stale buckets to prevent memory leaks.
func (rl *RateLimiter) cleanup() {
	// Go Pattern: time.Ticker sends values at regular intervals.
	// Always defer ticker.Stop() to release resources.
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, cl := range rl.limiters {
			// Remove buckets that haven't been used in over an hour
			if now.Sub(cl.lastSeen) > time.Hour {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}
