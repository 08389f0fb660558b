package handlers

import "net/http"

type sessionCounter interface {
	Sessions() int
}

type HealthHandler struct {
	sessions sessionCounter
}

func NewHealthHandler(sessions sessionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.Sessions(),
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Route not found", r))
}
