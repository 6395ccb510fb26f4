// api/middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/util"
)

// RateLimiter limits requests per authenticated principal using the injected
// fixed-window limiter. It must run after AuthMiddleware; unauthenticated
// requests fall back to the client IP as the key.
func RateLimiter(limiter *util.FixedWindowLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := util.GetUserIDFromContext(c)
		if err != nil {
			key = c.ClientIP()
		}

		result := limiter.Check(key, limit, window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))

		if !result.Allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("principal", key),
				zap.Int("limit", limit),
				zap.Duration("window", window))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
