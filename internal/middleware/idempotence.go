package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	idempotenceTTL       = 60 * time.Second
)

// Idempotence rejects a repeated write carrying the same Idempotency-Key
// while the first one is running or within a minute after it succeeded.
// Requests without the header pass through.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if rdb == nil || key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if ac, ok := Access(c); ok {
			caller = ac.UserID
		}
		redisKey := fmt.Sprintf("pagecraft:idempotence:%s:%s", caller, key)
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "an identical request already succeeded"
			if val == "0" {
				msg = "an identical request is still in progress"
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": 0, "code": http.StatusConflict, "message": msg})
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if err := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); err != nil {
			c.Next()
			return
		}

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}
