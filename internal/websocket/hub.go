package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	"peerwave-widget/internal/database"
	"peerwave-widget/internal/lib/logger/sl"
	"peerwave-widget/internal/location"
	"peerwave-widget/internal/models"
	"peerwave-widget/internal/widget"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub runs one widget per browser connection. With Redis configured, outbound
// events travel through the widget_updates:<session> channel, and anything
// published there by any process sharing the Redis reaches the socket. A failed
// publish falls back to writing the event directly.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	client widget.Completer
	prompt string

	publisher  *redis.Client
	subscriber *redis.Client

	log *slog.Logger
}

type session struct {
	id     uuid.UUID
	conn   *websocket.Conn
	widget *widget.Widget
	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex
}

func NewHub(client widget.Completer, prompt string, redisClients *database.RedisClients, log *slog.Logger) *Hub {
	if log == nil {
		log = sl.Discard()
	}
	h := &Hub{
		sessions: make(map[uuid.UUID]*session),
		client:   client,
		prompt:   prompt,
		log:      log,
	}
	if redisClients != nil {
		h.publisher = redisClients.Publisher
		h.subscriber = redisClients.Subscriber
	}
	return h
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	const op = "websocket.HandleWebSocket"

	log := h.log.With(slog.String("op", op))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", sl.Err(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The browser reports where it is before anything else happens.
	var hello models.ClientEvent
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != models.EventMount || hello.Href == "" {
		log.Debug("rejecting connection without mount event")
		closeWithReason(conn, websocket.ClosePolicyViolation, "expected mount event")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.New(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}
	sessLog := log.With(slog.String("session", s.id.String()))

	loc, err := location.Parse(hello.Href, func(target string) {
		h.emit(s, models.ServerEvent{Type: models.EventNavigate, URL: target})
	})
	if err != nil {
		cancel()
		closeWithReason(conn, websocket.CloseUnsupportedData, "invalid href")
		return
	}

	s.widget = widget.New(h.client, loc, h.prompt, func(state widget.State) {
		h.emitRender(s, state)
	}, sessLog)

	if err := h.registerSession(s); err != nil {
		sessLog.Error("failed to register session", sl.Err(err))
		cancel()
		closeWithReason(conn, websocket.CloseInternalServerErr, "session unavailable")
		return
	}

	h.emitRender(s, s.widget.State())
	s.widget.Mount()

	go h.pingLoop(s)
	go h.readLoop(s, sessLog)
}

func (h *Hub) readLoop(s *session, log *slog.Logger) {
	defer h.unregisterSession(s)

	for {
		var ev models.ClientEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read failed", sl.Err(err))
			}
			return
		}

		switch ev.Type {
		case models.EventSend:
			s.widget.Send()
		default:
			log.Debug("ignoring client event", slog.String("type", ev.Type))
		}
	}
}

func (h *Hub) pingLoop(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) registerSession(s *session) error {
	if h.subscriber != nil {
		pubsub := h.subscriber.Subscribe(s.ctx, channelName(s.id))
		// Wait for the subscription so the first render is not lost.
		if _, err := pubsub.Receive(s.ctx); err != nil {
			pubsub.Close()
			return err
		}
		go h.forwardPubSub(s, pubsub)
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	total := len(h.sessions)
	h.mu.Unlock()

	h.log.Info("widget session opened", slog.String("session", s.id.String()), slog.Int("total", total))
	return nil
}

func (h *Hub) unregisterSession(s *session) {
	s.widget.Unmount()
	s.cancel()

	s.writeMu.Lock()
	s.conn.Close()
	s.writeMu.Unlock()

	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()

	h.log.Info("widget session closed", slog.String("session", s.id.String()))
}

func (h *Hub) forwardPubSub(s *session, pubsub *redis.PubSub) {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.write([]byte(msg.Payload))
		}
	}
}

func (h *Hub) emitRender(s *session, state widget.State) {
	html, err := widget.RenderString(h.prompt, state)
	if err != nil {
		h.log.Error("failed to render widget", slog.String("session", s.id.String()), sl.Err(err))
		return
	}
	h.emit(s, models.ServerEvent{Type: models.EventRender, HTML: html})
}

func (h *Hub) emit(s *session, ev models.ServerEvent) {
	ev.Session = s.id.String()
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	if h.publisher != nil {
		err := h.publisher.Publish(s.ctx, channelName(s.id), data).Err()
		if err == nil {
			return
		}
		h.log.Warn("failed to publish widget event, writing directly",
			slog.String("session", s.id.String()),
			sl.Err(err),
		)
	}
	s.write(data)
}

func (s *session) write(data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.TextMessage, data)
}

// Sessions reports the number of open widget sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close unmounts every widget and drops its connection.
func (h *Hub) Close() {
	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.widget.Unmount()
		closeWithReason(s.conn, websocket.CloseGoingAway, "server shutting down")
	}
}

func channelName(id uuid.UUID) string {
	return "widget_updates:" + id.String()
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	conn.Close()
}
