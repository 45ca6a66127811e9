package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit returns per-caller rate limiting middleware using token buckets.
// Generation requests can cost real money, so each caller gets a bucket that
// fills at `rps` tokens/sec up to `burst` tokens; an empty bucket means 429.
//
// The bucket key is the API key when auth ran earlier in the chain, and the
// client IP otherwise (the analyze endpoints are public).
//
// sync.Mutex protects the map of limiters from concurrent goroutine access.
// This is one of the few cases where Go uses traditional locks instead of
// channels — a shared map with simple read/write is cleaner with a mutex.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		key := c.ClientIP()
		if apiKey, exists := c.Get("api_key"); exists {
			key = apiKey.(string) // Type assertion: interface{} → string
		}

		mu.Lock()
		limiter, exists := limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
