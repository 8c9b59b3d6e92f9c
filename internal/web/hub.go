package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mesh-intelligence/rewards/internal/cache"
)

const (
	eventBuffer  = 64
	writeTimeout = 5 * time.Second
)

// Hub pushes cache revalidation events to connected dashboard pages, which
// reload the list whose path changed.
type Hub struct {
	events  <-chan cache.Event
	cancel  func()
	origins []string
	log     *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub subscribes to c. Events are buffered until Run starts.
func NewHub(c *cache.Cache, origins []string, logger *slog.Logger) *Hub {
	events, cancel := c.Subscribe(eventBuffer)
	return &Hub{
		events:  events,
		cancel:  cancel,
		origins: origins,
		log:     logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run broadcasts events until ctx ends or the hub is closed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.events:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

// Close ends the cache subscription and disconnects every client.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("event client connected", "clients", n)

	defer h.remove(conn)
	for {
		// Clients never send; reading only detects the disconnect.
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

func (h *Hub) broadcast(ev cache.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encoding event", "path", ev.Path, "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.log.Debug("event write failed", "error", err)
			h.remove(conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.log.Debug("event client disconnected", "clients", n)
}
