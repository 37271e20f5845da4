// Package middleware holds the Redis response cache used on the
// read-only catalog endpoints. Purchases change session availability,
// so the cache TTL is kept short and only successful GET responses are
// stored.
package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/distributed-ticket-reservation/internal/config"
)

// cachedResponse is the payload stored in Redis per cached endpoint.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// captureWriter buffers the response body while it streams to the
// client so a successful response can be stored after the handler runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewRedisCache returns a middleware caching GET responses in Redis for
// cfg.TTL. With caching disabled or no Redis client available it
// degrades to a passthrough, so the service runs identically without a
// cache backend.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.JSONBlob(cached.Status, cached.Body)
				}
			}

			c.Response().Header().Set("X-Cache", "MISS")
			w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				return err
			}

			if w.status == http.StatusOK && w.buf.Len() <= cfg.MaxBodyBytes {
				store(rdb, key, cachedResponse{Status: w.status, Body: w.buf.Bytes()}, cfg.TTL)
			}
			return nil
		}
	}
}

func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func store(rdb *redis.Client, key string, resp cachedResponse, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rdb.SetEx(ctx, key, raw, ttl)
}
