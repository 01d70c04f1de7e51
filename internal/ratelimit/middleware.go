package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the per-IP limit on every request it wraps and
// exposes the usual X-RateLimit headers.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := l.AllowIP(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", l.cfg.IPLimitPerMin))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))

		if !res.Allowed {
			retryAfter := res.RetryAfter
			if retryAfter <= 0 {
				retryAfter = time.Minute
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
