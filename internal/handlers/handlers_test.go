package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testPrompt = "Hello! Can you tell me a fun fact about space?"

type fixedSessions int

func (f fixedSessions) Sessions() int { return int(f) }

func TestIndex_ServesIdleWidget(t *testing.T) {
	h := NewPageHandler(testPrompt, "/api/v1/ws", nil)

	rr := httptest.NewRecorder()
	h.Index(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{testPrompt, ">Send Message</button>", "new WebSocket(", `type: "mount"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "Response:</h3>") {
		t.Error("Expected no response section before the first attempt")
	}
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(fixedSessions(2))

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", result["status"])
	}
	if result["sessions"] != float64(2) {
		t.Errorf("Expected 2 sessions, got %v", result["sessions"])
	}
}

func TestNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()

	NotFound(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	var result struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Error.Code != "NOT_FOUND" || result.Error.RequestID != "req-1" {
		t.Errorf("Unexpected error body %+v", result.Error)
	}
}
