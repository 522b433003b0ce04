package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	rateLimitMax    = 50
	rateLimitWindow = time.Second
)

// Counter is the slice of the redis client the throttle needs.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimit returns a middleware that enforces a per-second request cap
// for unauthenticated clients. It must run after OptionalAuth so the
// user ID is already resolved. Feature-level quotas are enforced
// separately in the enhance module.
func RateLimit(counter Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("enhance:rate_limit:%s:%d", ip, time.Now().Unix())
		count, err := counter.Incr(c.Request.Context(), key, rateLimitWindow+time.Second)
		if err != nil {
			// Redis trouble must not take the API down.
			c.Next()
			return
		}

		if count > rateLimitMax {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":      0,
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}
