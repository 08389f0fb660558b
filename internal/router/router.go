package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"peerwave-widget/internal/handlers"
	"peerwave-widget/internal/middleware"
	"peerwave-widget/internal/websocket"
)

const WSPath = "/api/v1/ws"

func New(
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
	wsHub *websocket.Hub,
	wsLimiter *middleware.RateLimiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.NotFound(handlers.NotFound)

	// Health check
	r.Get("/health", healthHandler.Health)

	// ──── Widget page ────
	r.With(chimiddleware.Timeout(15 * time.Second)).Get("/", pageHandler.Index)

	r.Route("/api/v1", func(r chi.Router) {
		// ──── WebSocket ────
		r.With(wsLimiter.Middleware).Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
