package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributed-ticket-reservation/internal/config"
)

// Without a Redis client the middleware must be a transparent
// passthrough: handlers run normally and no cache header appears.
func TestCachePassthroughWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, TTL: time.Second, Prefix: "cache", MaxBodyBytes: 1 << 20}
	mw := NewRedisCache(cfg, nil)

	e := echo.New()
	e.GET("/v1/films", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/films", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("body = %q, want the handler's response", rec.Body.String())
	}
	if got := rec.Header().Get("X-Cache"); got != "" {
		t.Fatalf("X-Cache = %q, want no cache header without a backend", got)
	}
}

func TestCacheDisabledByConfig(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	called := false
	e.GET("/x", func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	}, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called {
		t.Fatal("disabled cache must still invoke the handler")
	}
}
