package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"SentimentOracle/internal/domain/models"
	"SentimentOracle/internal/service/metrics"
	xlogger "SentimentOracle/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

// Message is pushed to every connected dashboard after a refresh cycle.
type Message struct {
	Type      string                 `json:"type"`
	Range     string                 `json:"range"`
	Sentiment models.SentimentResult `json:"sentiment"`
	UpdatedAt time.Time              `json:"updated_at"`
	Errors    map[string]string      `json:"errors,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans refresh notifications out to websocket clients. Clients that
// cannot keep up are disconnected.
type Hub struct {
	logger   *xlogger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(logger *xlogger.Logger) *Hub {
	if logger == nil {
		logger = xlogger.Nop()
	}
	metrics.Register()
	return &Hub{
		logger: logger.With(xlogger.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the request and registers the connection.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Inc()
	h.logger.Debug("websocket client connected", xlogger.Int("clients", n))

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// Broadcast sends a refresh notification built from snap.
func (h *Hub) Broadcast(snap models.Snapshot) {
	b, err := json.Marshal(Message{
		Type:      "refresh",
		Range:     snap.Range,
		Sentiment: snap.Sentiment,
		UpdatedAt: snap.UpdatedAt,
		Errors:    snap.Errors,
	})
	if err != nil {
		h.logger.Error("encode websocket message", xlogger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			h.removeLocked(cl)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.removeLocked(cl)
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(cl)
}

func (h *Hub) removeLocked(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
	metrics.WSClients.Dec()
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", xlogger.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}
