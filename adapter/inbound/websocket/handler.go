package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const (
	sendBufferSize = 32
	writeTimeout   = 5 * time.Second
)

// Handler streams moderation events to connected admin panels
type Handler struct {
	upgrader    websocket.Upgrader
	connections map[string]*websocketConnection
	mu          sync.RWMutex
	rootCtx     context.Context
	logger      outbound.Logger
}

// websocketConnection is one live admin panel
type websocketConnection struct {
	conn      *websocket.Conn
	id        string
	send      chan any
	done      chan struct{}
	closeOnce sync.Once
}

func (c *websocketConnection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

var _ outbound.EventPublisher = (*Handler)(nil)

func NewHandler(rootCtx context.Context, logger outbound.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the route sits behind admin auth
			},
		},
		connections: make(map[string]*websocketConnection),
		rootCtx:     rootCtx,
		logger:      logger,
	}
}

// HandleConnection upgrades the request and subscribes it to the event feed
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Error upgrading to WebSocket", "error", err)
		return
	}

	wsConn := &websocketConnection{
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan any, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.connections[wsConn.id] = wsConn
	h.mu.Unlock()

	wsConn.send <- map[string]string{
		"type":           "connected",
		"subscriptionId": wsConn.id,
	}

	h.logger.Debug("WebSocket client connected", "subscriptionId", wsConn.id)

	go h.writeLoop(wsConn)
	go h.handleWebSocketSession(wsConn)
}

// Publish queues event for every client. Slow clients drop events rather
// than block the caller.
func (h *Handler) Publish(event model.Event) {
	message := map[string]any{
		"type":  "event",
		"event": event,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.connections {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("WebSocket client too slow, event dropped",
				"subscriptionId", c.id, "event", string(event.Type))
		}
	}
}

// ClientCount reports the number of connected panels
func (h *Handler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Handler) writeLoop(wsConn *websocketConnection) {
	for {
		select {
		case msg := <-wsConn.send:
			wsConn.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wsConn.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("WebSocket write failed", "subscriptionId", wsConn.id, "error", err)
				wsConn.close()
				wsConn.conn.Close()
				return
			}
		case <-wsConn.done:
			return
		case <-h.rootCtx.Done():
			return
		}
	}
}

func (h *Handler) handleWebSocketSession(wsConn *websocketConnection) {
	defer func() {
		wsConn.close()
		wsConn.conn.Close()

		h.mu.Lock()
		delete(h.connections, wsConn.id)
		h.mu.Unlock()

		h.logger.Debug("WebSocket client disconnected", "subscriptionId", wsConn.id)
	}()

	for {
		messageType, data, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket error", "error", err)
			}
			break
		}

		h.handleClientMessage(wsConn, messageType, data)
	}
}

func (h *Handler) handleClientMessage(wsConn *websocketConnection, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var message map[string]any
	if err := json.Unmarshal(data, &message); err != nil {
		h.logger.Debug("Error parsing client message", "error", err)
		return
	}

	if msgType, _ := message["type"].(string); msgType == "ping" {
		select {
		case wsConn.send <- map[string]string{"type": "pong"}:
		case <-wsConn.done:
		}
	}
}

func (h *Handler) Cleanup() {
	h.logger.Info("Cleaning up WebSocket handler resources")

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.connections {
		c.close()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
			time.Now().Add(time.Second))
		c.conn.Close()
		delete(h.connections, id)
	}
}
