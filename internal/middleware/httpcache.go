package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	HTTPCachePrefix         = "pagecraft:http-cache:"
	HeaderCache             = "X-Pagecraft-Cache"
	defaultHTTPCacheTTL     = 15 * time.Second
	defaultHTTPCacheMaxBody = 1 << 20
)

type HTTPCacheOptions struct {
	TTL          time.Duration
	Disable      bool
	MaxBodyBytes int
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body     []byte
	max      int
	overflow bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow {
		return
	}
	if len(w.body)+len(data) > w.max {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache caches successful anonymous GET responses in Redis, keyed by
// request URI and selected organisation.
func HTTPCache(rdb *redis.Client, opts HTTPCacheOptions) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultHTTPCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}
	maxAge := "public, max-age=" + strconv.Itoa(int(opts.TTL/time.Second))

	return func(c *gin.Context) {
		if opts.Disable || rdb == nil || c.Request.Method != http.MethodGet || IsAuthenticated(c) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := HTTPCachePrefix + strings.TrimSpace(c.GetHeader(HeaderOrganization)) + ":" + c.Request.URL.RequestURI()
		if cached, ok := readCachedResponse(ctx, rdb, key); ok {
			c.Header(HeaderCache, "hit")
			c.Header("Cache-Control", maxAge)
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, max: opts.MaxBodyBytes}
		c.Writer = buffer
		c.Header(HeaderCache, "miss")
		c.Next()

		if c.Writer.Status() != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		raw, err := json.Marshal(cachedResponse{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        buffer.body,
		})
		if err != nil {
			return
		}
		_ = rdb.Set(ctx, key, raw, opts.TTL).Err()
	}
}

// PurgeHTTPCache deletes every cached response.
func PurgeHTTPCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, HTTPCachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func readCachedResponse(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedResponse{}, false
	}
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Status <= 0 {
		return cachedResponse{}, false
	}
	if cached.ContentType == "" {
		cached.ContentType = "application/json; charset=utf-8"
	}
	return cached, true
}
