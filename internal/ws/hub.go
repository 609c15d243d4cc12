package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"tripboard/internal/models"
	"tripboard/internal/observability"
)

// filter is one change-feed subscription held by a connection.
type filter struct {
	Table   string
	ScopeID string
}

// Client is one connected change-feed consumer with its active filters.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	info    ConnInfo

	mu      sync.Mutex
	filters map[filter]struct{}
}

// Info returns the connection metadata.
func (c *Client) Info() ConnInfo { return c.info }

func (c *Client) addFilter(f filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[f] = struct{}{}
}

func (c *Client) wants(f filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.filters[f]
	return ok
}

func (c *Client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub fans row-change events out to every connection whose filters match.
// Mutating handlers publish here after committing.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Add registers a connection and returns its client handle.
func (h *Hub) Add(conn *websocket.Conn, info ConnInfo) *Client {
	client := &Client{conn: conn, info: info, filters: make(map[filter]struct{})}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	return client
}

// Remove drops a connection from the hub.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// Subscribe attaches a filter to the client.
func (h *Hub) Subscribe(client *Client, table, scopeID string) {
	client.addFilter(filter{Table: table, ScopeID: scopeID})
}

// ClientCount reports the number of connected consumers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish delivers the event to every connection subscribed to its table and
// scope. Connections that fail to take the write are closed and removed.
func (h *Hub) Publish(ev models.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("change event marshal error: %v", err)
		return
	}
	want := filter{Table: ev.Table, ScopeID: ev.ScopeID}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.wants(want) {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	observability.IncChangeEvent(ev.Table, ev.Type)
	for _, client := range clients {
		if err := client.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			client.conn.Close()
			h.Remove(client)
			observability.IncWSEvent("ws_error")
		}
	}
}
