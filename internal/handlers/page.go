package handlers

import (
	"html/template"
	"net/http"

	"golang.org/x/exp/slog"

	"peerwave-widget/internal/lib/logger/sl"
	"peerwave-widget/internal/widget"
)

// The shell only forwards the page location and button presses; everything
// the widget shows comes from the server.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Peerwave Chat</title>
<style>
body { font-family: system-ui, -apple-system, sans-serif; max-width: 640px; margin: 2.5rem auto; padding: 0 1rem; }
.error { color: #b00020; }
button { padding: .6rem 1.4rem; font-size: 1rem; }
</style>
</head>
<body>
<div id="widget">{{.Initial}}</div>
<script>
(function () {
  var root = document.getElementById("widget");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + {{.WSPath}});
  ws.onopen = function () {
    ws.send(JSON.stringify({type: "mount", href: location.href}));
  };
  ws.onmessage = function (msg) {
    var ev = JSON.parse(msg.data);
    if (ev.type === "render") {
      root.innerHTML = ev.html;
    } else if (ev.type === "navigate") {
      window.location.href = ev.url;
    }
  };
  root.addEventListener("click", function (e) {
    var btn = e.target.closest("button[data-action=send]");
    if (btn && !btn.disabled && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({type: "send"}));
    }
  });
})();
</script>
</body>
</html>
`))

type PageHandler struct {
	prompt string
	wsPath string
	log    *slog.Logger
}

func NewPageHandler(prompt, wsPath string, log *slog.Logger) *PageHandler {
	if log == nil {
		log = sl.Discard()
	}
	return &PageHandler{prompt: prompt, wsPath: wsPath, log: log}
}

// Index serves the shell with an idle widget already in place, so the page
// reads correctly before the socket connects.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	initial, err := widget.RenderString(h.prompt, widget.Idle{})
	if err != nil {
		h.log.Error("failed to render widget", sl.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, struct {
		Initial template.HTML
		WSPath  string
	}{
		Initial: template.HTML(initial),
		WSPath:  h.wsPath,
	}); err != nil {
		h.log.Warn("failed to write page", sl.Err(err))
	}
}
