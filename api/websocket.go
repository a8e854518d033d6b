package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lightscameradata/boxoffice/internal/chart"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // pages and sockets share an origin; CORS already gates the API
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// ============================================================
// Messages
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsInbound is a client message; Data holds a chart.Event for type "event".
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SessionInfo is sent once when an interaction session starts.
type SessionInfo struct {
	ID        string          `json:"id"`
	Chart     string          `json:"chart"`
	Transform chart.Transform `json:"transform"`
	Attr      string          `json:"attr"`
}

// ============================================================
// Handler
// ============================================================

// handleChartSocket upgrades to a WebSocket bound to one chart. The client
// sends pointer and zoom events; each is applied to a chart.Session owned by
// this connection and answered with the resulting presentation update.
func (s *Server) handleChartSocket(w http.ResponseWriter, r *http.Request) {
	spec, ds, ok := s.loadChart(w, r, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	scene, err := chart.Layout(ds, s.cfg.Chart.Options(spec.Title))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := chart.NewSession(uuid.NewString(), ds, scene)
	client := &WSClient{
		hub:  s.wsHub,
		send: make(chan WSMessage, 256),
	}
	s.wsHub.Register(client)
	s.logger.Debug("interaction session started", "session", session.ID, "chart", spec.Name)

	t := session.Transform()
	client.trySend(WSMessage{Type: "session", Data: SessionInfo{
		ID:        session.ID,
		Chart:     spec.Name,
		Transform: t,
		Attr:      t.String(),
	}})

	go wsWritePump(conn, client, s)
	go wsReadPump(conn, client, session, s)
}

// wsReadPump applies client events to the session. It is the only goroutine
// touching the session.
func wsReadPump(conn *websocket.Conn, client *WSClient, session *chart.Session, s *Server) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
		s.logger.Debug("interaction session ended", "session", session.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "session", session.ID, "error", err)
			}
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(message, &msg); err != nil {
			client.trySend(WSMessage{Type: "error", Data: "invalid message"})
			continue
		}

		switch msg.Type {
		case "event":
			var ev chart.Event
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				client.trySend(WSMessage{Type: "error", Data: "invalid event"})
				continue
			}
			update, err := session.Handle(ev)
			if err != nil {
				client.trySend(WSMessage{Type: "error", Data: err.Error()})
				continue
			}
			client.trySend(WSMessage{Type: "update", Data: update})
		case "ping":
			client.trySend(WSMessage{Type: "pong"})
		}
	}
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient, s *Server) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("websocket marshal error", "error", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSHub tracks live interaction sessions and fans out server notices.
type WSHub struct {
	mu        sync.RWMutex
	clients   map[*WSClient]bool
	broadcast chan WSMessage
	members   chan membership // registrations and unregistrations, in order
	done      chan struct{}   // closed when Run returns
}

type membership struct {
	client *WSClient
	join   bool
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub    *WSHub
	mu     sync.Mutex
	closed bool
	send   chan WSMessage
}

// trySend queues msg unless the client is closed or its buffer is full.
func (c *WSClient) trySend(msg WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:   make(map[*WSClient]bool),
		broadcast: make(chan WSMessage, 256),
		members:   make(chan membership, 32),
		done:      make(chan struct{}),
	}
}

// Run starts the hub event loop; it returns when ctx is done. Run must be
// called at most once.
func (h *WSHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		case m := <-h.members:
			h.mu.Lock()
			if m.join {
				h.clients[m.client] = true
			} else if _, ok := h.clients[m.client]; ok {
				delete(h.clients, m.client)
				m.client.close()
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.trySend(msg) {
					// Slow client; disconnect
					delete(h.clients, client)
					client.close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub. After the hub has stopped the client is
// closed instead.
func (h *WSHub) Register(client *WSClient) {
	h.send(membership{client: client, join: true})
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.send(membership{client: client})
}

func (h *WSHub) send(m membership) {
	select {
	case <-h.done:
		m.client.close()
		return
	default:
	}
	select {
	case h.members <- m:
	case <-h.done:
		m.client.close()
	}
}
