package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/folio/internal/profile"
	teststore "github.com/hrygo/folio/store/test"
)

func newTestServer(t *testing.T, rateBurst int) *Server {
	t.Helper()
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	s, err := NewServer(ctx, &profile.Profile{
		Mode:      "dev",
		RateLimit: 1,
		RateBurst: rateBurst,
	}, ts)
	require.NoError(t, err)
	t.Cleanup(s.Tagging.Close)
	return s
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 10)
	rec := serve(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service ready.", rec.Body.String())
}

func TestMetricsExposeTaggingCounters(t *testing.T) {
	s := newTestServer(t, 10)
	require.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/tags").Code)

	rec := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "folio_api_requests_total"))
}

func TestAPIIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/tags").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/tags").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(s, http.MethodGet, "/api/v1/tags").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz").Code)
}
