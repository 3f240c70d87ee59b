package output

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rbright/livescribe/internal/transcript"
)

// Event is one message on the live websocket feed.
type Event struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Session string `json:"session,omitempty"`
}

const (
	EventPreview = "preview"
	EventFinal   = "final"
	EventStatus  = "status"

	clientBuffer = 64
	writeWait    = 5 * time.Second
)

// Hub broadcasts transcript events to websocket clients. A client that falls
// behind by more than its buffer is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	session string
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// SetSession tags subsequent events with a session id.
func (h *Hub) SetSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = id
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logDebug("websocket upgrade failed", "error", err.Error())
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards inbound messages and detects disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues ev for every client.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.Session == "" {
		ev.Session = h.session
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Preview(u transcript.Utterance) {
	h.Broadcast(Event{Type: EventPreview, Index: u.Index, Text: u.Text})
}

func (h *Hub) Finalize(u transcript.Utterance) {
	h.Broadcast(Event{Type: EventFinal, Index: u.Index, Text: u.Text})
}

func (h *Hub) Status(message string) {
	h.Broadcast(Event{Type: EventStatus, Text: message})
}

func (h *Hub) logDebug(msg string, attrs ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, attrs...)
	}
}
