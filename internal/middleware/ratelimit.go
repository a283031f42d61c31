package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pagecraft/core/internal/pkg/response"
)

const rateLimitWindow = time.Second

// RateLimit caps anonymous requests per client IP to max per second.
// Redis errors let the request through.
func RateLimit(rdb *redis.Client, max int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("pagecraft:rate_limit:%s:%d", ip, time.Now().Unix())
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}
		if count > int64(max) {
			if count == int64(max)+1 {
				log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			}
			c.Header("Retry-After", "1")
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
