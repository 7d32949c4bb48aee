package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/valetapp/valet/internal/domain"
	"github.com/valetapp/valet/internal/logging"
)

// wsEvent is one frame on the event stream.
type wsEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// wsClient is one connected event-stream subscriber.
type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *wsClient) send(ev wsEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(ev)
}

// clientRegistry tracks connected WebSocket subscribers.
type clientRegistry struct {
	mu      sync.Mutex
	clients map[string]*wsClient
	log     *logging.Logger
}

func newClientRegistry(log *logging.Logger) *clientRegistry {
	return &clientRegistry{clients: make(map[string]*wsClient), log: log}
}

func (r *clientRegistry) add(c *wsClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
	r.log.Debug().Str("connId", c.id).Int("total", len(r.clients)).Msg("client connected")
}

func (r *clientRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	r.log.Debug().Str("connId", id).Int("total", len(r.clients)).Msg("client disconnected")
}

// broadcast sends an event to every subscriber. Failed writes drop the
// client; the read loop notices the closed connection and cleans up.
func (r *clientRegistry) broadcast(ev wsEvent) {
	r.mu.Lock()
	clients := make([]*wsClient, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		if err := c.send(ev); err != nil {
			r.log.Warn().Err(err).Str("connId", c.id).Msg("broadcast failed, dropping client")
			c.conn.Close()
			r.remove(c.id)
		}
	}
}

func (r *clientRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.conn.Close()
		delete(r.clients, id)
	}
}

// handleWebSocket upgrades the connection and streams turn events until the
// client disconnects. The stream is one-way; inbound frames are discarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(1 << 20)

	client := &wsClient{id: uuid.NewString(), conn: conn}
	s.clients.add(client)
	defer func() {
		s.clients.remove(client.id)
		conn.Close()
	}()

	if err := client.send(wsEvent{Type: "hello", Data: map[string]any{"connId": client.id}}); err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcastTurn publishes a completed turn to all subscribers.
func (s *Server) broadcastTurn(sessionID string, msg *domain.ConversationMessage) {
	s.clients.broadcast(wsEvent{
		Type: "chat.turn",
		Data: map[string]any{
			"sessionId": sessionID,
			"message":   msg,
		},
	})
}
