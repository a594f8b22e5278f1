package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/officefit/office-yoga/internal/config"
)

func newCachedEcho(t *testing.T, cfg config.CacheConfig) (*echo.Echo, *miniredis.Miniredis, *redis.Client, *int64) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var calls int64
	e := echo.New()
	handler := func(c echo.Context) error {
		atomic.AddInt64(&calls, 1)
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("telegram_id")})
	}
	e.GET("/users/is_registered/:telegram_id", handler, ResponseCache(cfg, rdb))
	return e, mr, rdb, &calls
}

func cacheGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: 30 * time.Second, Prefix: "cache", MaxBodyBytes: 1 << 20}
}

func TestResponseCacheMissThenHit(t *testing.T) {
	e, _, _, calls := newCachedEcho(t, testCacheConfig())

	first := cacheGet(e, "/users/is_registered/100")
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first request X-Cache = %q, want MISS", first.Header().Get("X-Cache"))
	}

	second := cacheGet(e, "/users/is_registered/100")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request X-Cache = %q, want HIT", second.Header().Get("X-Cache"))
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached body diverged: %q vs %q", second.Body.String(), first.Body.String())
	}
	if got := atomic.LoadInt64(calls); got != 1 {
		t.Fatalf("handler invoked %d times, want 1 (second served from cache)", got)
	}
}

func TestResponseCacheKeysOnConcretePath(t *testing.T) {
	// Both paths resolve to the same route pattern; entries must still
	// be distinct per path parameter.
	e, _, _, calls := newCachedEcho(t, testCacheConfig())

	a := cacheGet(e, "/users/is_registered/100")
	b := cacheGet(e, "/users/is_registered/200")
	if b.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("different path param served a cached entry: %q", b.Header().Get("X-Cache"))
	}
	if a.Body.String() == b.Body.String() {
		t.Fatalf("path params collided in cache: both returned %q", a.Body.String())
	}
	if got := atomic.LoadInt64(calls); got != 2 {
		t.Fatalf("handler invoked %d times, want 2", got)
	}
}

func TestResponseCacheInvalidation(t *testing.T) {
	cfg := testCacheConfig()
	e, _, rdb, calls := newCachedEcho(t, cfg)

	cacheGet(e, "/users/is_registered/100")
	cacheGet(e, "/users/is_registered/100")
	if got := atomic.LoadInt64(calls); got != 1 {
		t.Fatalf("handler invoked %d times before invalidation, want 1", got)
	}

	InvalidateCache(rdb, cfg.Prefix)

	rec := cacheGet(e, "/users/is_registered/100")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("after invalidation X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}
	if got := atomic.LoadInt64(calls); got != 2 {
		t.Fatalf("handler invoked %d times after invalidation, want 2", got)
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	cfg := testCacheConfig()
	e, mr, _, calls := newCachedEcho(t, cfg)

	cacheGet(e, "/users/is_registered/100")
	mr.FastForward(cfg.TTL + time.Second)

	rec := cacheGet(e, "/users/is_registered/100")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("after TTL X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}
	if got := atomic.LoadInt64(calls); got != 2 {
		t.Fatalf("handler invoked %d times after expiry, want 2", got)
	}
}

func TestResponseCacheDisabledPassesThrough(t *testing.T) {
	e, _, _, calls := newCachedEcho(t, config.CacheConfig{Enabled: false})

	for i := 0; i < 3; i++ {
		rec := cacheGet(e, "/users/is_registered/100")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rec.Code)
		}
		if rec.Header().Get("X-Cache") != "" {
			t.Fatalf("disabled cache set X-Cache = %q", rec.Header().Get("X-Cache"))
		}
	}
	if got := atomic.LoadInt64(calls); got != 3 {
		t.Fatalf("handler invoked %d times, want %d", got, 3)
	}
}
