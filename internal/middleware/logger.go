package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger returns a Gin middleware that logs each request using zap.
// Server errors are logged at error level with the last handler error.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if ac, ok := Access(c); ok {
			fields = append(fields, zap.String("user", ac.UserID), zap.String("org", ac.OrganizationID))
		}
		level := zapcore.InfoLevel
		if status >= 500 {
			level = zapcore.ErrorLevel
			if err := c.Errors.Last(); err != nil {
				fields = append(fields, zap.Error(err.Err))
			}
		}
		log.Check(level, "request").Write(fields...)
	}
}
