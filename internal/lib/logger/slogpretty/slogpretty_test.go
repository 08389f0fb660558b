package slogpretty

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

func decodeFields(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	start := strings.Index(out, "{")
	if start < 0 {
		t.Fatalf("Expected attrs in output, got %q", out)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(out[start:]), &fields); err != nil {
		t.Fatalf("Failed to decode attrs: %v\n%s", err, out)
	}
	return fields
}

func TestPrettyHandler_Groups(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.With(slog.String("op", "hub")).
		WithGroup("session").
		With(slog.String("id", "s-1")).
		Info("opened", slog.Int("total", 2), slog.Group("client", slog.String("ip", "10.0.0.1")))

	out := buf.String()
	if !strings.Contains(out, "INFO: opened") {
		t.Errorf("Expected level and message, got %q", out)
	}

	fields := decodeFields(t, out)
	if fields["op"] != "hub" {
		t.Errorf("Expected top-level op, got %v", fields["op"])
	}

	session, ok := fields["session"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected session group, got %v", fields)
	}
	if session["id"] != "s-1" {
		t.Errorf("Expected session.id 's-1', got %v", session["id"])
	}
	if session["total"] != float64(2) {
		t.Errorf("Expected record attrs inside the open group, got %v", session["total"])
	}
	client, ok := session["client"].(map[string]interface{})
	if !ok || client["ip"] != "10.0.0.1" {
		t.Errorf("Expected session.client.ip, got %v", session["client"])
	}
}

func TestPrettyHandler_EmptyGroupName(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(PrettyHandlerOptions{}.NewPrettyHandler(&buf))

	log.WithGroup("").Info("flat", slog.String("k", "v"))

	if fields := decodeFields(t, buf.String()); fields["k"] != "v" {
		t.Errorf("Expected attrs at top level, got %v", fields)
	}
}
