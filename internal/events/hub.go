package events

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
)

// Message is one progress event pushed to attached observers.
type Message struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub broadcasts progress messages over WebSocket. Publishing never blocks
// the pipeline: a client whose buffer is full misses messages, a client
// whose write fails is dropped.
type Hub struct {
	port   int
	logger arbor.ILogger

	mu      sync.Mutex
	clients map[*client]struct{}
	server  *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// NewHub creates a progress hub. Port 0 disables the listener entirely;
// Publish becomes a no-op.
func NewHub(port int, logger arbor.ILogger) *Hub {
	return &Hub{
		port:    port,
		logger:  logger,
		clients: map[*client]struct{}{},
	}
}

// Start begins listening. Disabled hubs return immediately.
func (h *Hub) Start() error {
	if h.port == 0 {
		h.logger.Debug().Msg("Progress hub disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleWS)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", h.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", h.port, err)
	}

	h.server = &http.Server{Handler: mux}
	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			h.logger.Warn().Err(err).Msg("Progress hub server stopped")
		}
	}()

	h.logger.Info().Int("port", h.port).Msg("Progress hub listening")
	return nil
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Message, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.conn.Close()
	}()

	for msg := range c.send {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// Publish fans a message out to every connected client without blocking.
func (h *Hub) Publish(level, message string) {
	if h.port == 0 {
		return
	}

	msg := Message{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   message,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer, skip.
		}
	}
}

// Close shuts the listener down and disconnects clients.
func (h *Hub) Close() error {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
	}
	h.clients = map[*client]struct{}{}
	server := h.server
	h.server = nil
	h.mu.Unlock()

	if server != nil {
		return server.Close()
	}
	return nil
}
