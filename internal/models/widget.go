package models

// Envelope types exchanged with the browser shell over the widget socket.
const (
	EventMount    = "mount"
	EventSend     = "send"
	EventRender   = "render"
	EventNavigate = "navigate"
)

// ClientEvent is sent by the browser shell.
type ClientEvent struct {
	Type string `json:"type"`
	Href string `json:"href,omitempty"` // mount only
}

// ServerEvent is pushed to the browser shell.
type ServerEvent struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	HTML    string `json:"html,omitempty"`
	URL     string `json:"url,omitempty"`
}
