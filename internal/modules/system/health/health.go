package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/pkg/access"
	pkgredis "github.com/pagecraft/core/internal/pkg/redis"
	"github.com/pagecraft/core/internal/pkg/response"
)

const pingTimeout = 2 * time.Second

// Check is one dependency checked by GET /health.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Database pings the SQL connection behind db.
func Database(db *gorm.DB) Check {
	return Check{Name: "database", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// Redis pings the redis connection.
func Redis(rc *pkgredis.Client) Check {
	return Check{Name: "redis", Ping: func(ctx context.Context) error {
		return rc.Raw().Ping(ctx).Err()
	}}
}

type logItem struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
	Created  int64  `json:"created"`
}

// RegisterRoutes mounts the anonymous health check and the admin log viewer.
func RegisterRoutes(rg *gin.RouterGroup, checks []Check, logDir string, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		result := gin.H{}
		for _, chk := range checks {
			ok := chk.Ping(ctx) == nil
			result[chk.Name] = ok
			if !ok {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		result["status"] = status
		c.JSON(code, result)
	})

	logs := rg.Group("/health/logs", authMW, middleware.Require(access.ActionManage))
	logs.GET("", func(c *gin.Context) {
		entries, err := os.ReadDir(logDir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				response.OK(c, []logItem{})
				return
			}
			response.InternalError(c, err)
			return
		}
		items := make([]logItem, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			items = append(items, logItem{
				Filename: entry.Name(),
				Size:     formatByteSize(info.Size()),
				Created:  info.ModTime().UnixMilli(),
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Created > items[j].Created })
		response.OK(c, items)
	})

	logs.GET("/:filename", func(c *gin.Context) {
		filename := c.Param("filename")
		if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".log") {
			response.BadRequest(c, "invalid log filename")
			return
		}
		target := filepath.Join(logDir, filename)
		if _, err := os.Stat(target); err != nil {
			response.NotFoundMsg(c, "log file not found")
			return
		}
		c.File(target)
	})
}

func formatByteSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
