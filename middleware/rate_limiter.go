package middleware

import (
	"net/http"

	"mentorlink/services/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc picks the bucket a request is charged to. An empty key skips limiting.
type KeyFunc func(c *gin.Context) string

// ByClientIP charges the caller's address.
func ByClientIP(c *gin.Context) string {
	return "ip:" + getClientIP(c)
}

// ByUser charges the authenticated caller, falling back to the address before JWTAuth ran.
func ByUser(c *gin.Context) string {
	if id := c.GetString(ContextUserID); id != "" {
		return "user:" + id
	}
	return ByClientIP(c)
}

// RateLimit rejects requests once the key's bucket is empty.
func RateLimit(limiter *ratelimit.KeyedLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" || limiter.Allow(k) {
			c.Next()
			return
		}
		zap.L().Warn("Rate limit exceeded",
			zap.String("key", k),
			zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
	}
}
