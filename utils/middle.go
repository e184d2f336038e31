package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a process-wide token bucket to a route.
// A non-positive rate disables limiting.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var limiter *rate.Limiter
	if rps <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many uploads"})
			c.Abort()
			return
		}
		c.Next()
	}
}
