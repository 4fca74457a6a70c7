package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/server/internal/observability"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	// Budgets are per key.
	require.True(t, rl.Allow("b"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))
	require.Equal(t, 2, rl.Len())

	now = now.Add(DefaultIdleTimeout / 2)
	rl.Allow("b")

	// "a" has been idle for the full timeout, "b" only for half of it.
	now = now.Add(DefaultIdleTimeout / 2)
	rl.Allow("c")
	assert.Equal(t, 2, rl.Len())

	now = now.Add(DefaultIdleTimeout)
	rl.Allow("c")
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter(1, 1).Middleware())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimiterMiddlewarePrefixes(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter(1, 1).Middleware("/api/"))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/healthz", ok)
	e.GET("/api/v1/tags", ok)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do("/api/v1/tags"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/tags"))
	for range 3 {
		assert.Equal(t, http.StatusOK, do("/healthz"))
	}
}

func TestRequestContextMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestContext(logger))
	var seen string
	e.GET("/items/:id", func(c echo.Context) error {
		reqCtx, ok := observability.FromContext(c.Request().Context())
		require.True(t, ok)
		seen = reqCtx.RequestID
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(echo.HeaderXRequestID, "fixed-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fixed-id", seen)
	assert.Equal(t, "fixed-id", rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"path":"/items/:id"`)
	assert.Contains(t, buf.String(), `"status":404`)
}
