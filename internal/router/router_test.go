package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"peerwave-widget/internal/handlers"
	"peerwave-widget/internal/middleware"
	"peerwave-widget/internal/websocket"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	hub := websocket.NewHub(nil, "prompt", nil, nil)
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)

	return New(
		handlers.NewPageHandler("prompt", WSPath, nil),
		handlers.NewHealthHandler(hub),
		hub,
		limiter,
		"*",
	)
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/missing", http.StatusNotFound},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Error("Expected X-Request-ID on every response")
			}
		})
	}
}

func TestWebSocketRoute_RateLimited(t *testing.T) {
	r := newTestRouter(t)

	// Plain GETs fail the upgrade but still spend the limiter's budget.
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, WSPath, nil))
	if first.Code == http.StatusTooManyRequests {
		t.Fatal("Expected first request to pass the limiter")
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, WSPath, nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", second.Code)
	}
}
