package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
)

// group is the live member set for one fan-out target. sendMu serializes
// broadcasts so every member observes events in the order the triggering
// operations were accepted (single writer per group).
type group struct {
	members map[uint64]*ClientConnection
	sendMu  sync.Mutex
}

// BroadcastResult is the per-member outcome of one fan-out. A failed
// delivery never fails the broadcast; the dead connection is closed and
// its read loop performs the regular disconnect cleanup.
type BroadcastResult struct {
	Delivered int
	Failed    int
}

// Hub is the group registry and broadcaster. It owns all live connections,
// their group subscriptions, and per-user connection counts.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uint64]*ClientConnection
	userConns map[uint]int
	groups    map[string]*group

	nextID atomic.Uint64

	pingInterval time.Duration
	pongTimeout  time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[uint64]*ClientConnection),
		userConns:    make(map[uint]int),
		groups:       make(map[string]*group),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}
}

// Start launches the hub's background health checker.
func (h *Hub) Start() {
	h.done = make(chan struct{})
	go h.connectionHealthChecker()
}

// Stop halts background work and closes every live connection.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		if h.done != nil {
			close(h.done)
		}
		h.mu.Lock()
		clients := make([]*ClientConnection, 0, len(h.clients))
		for _, c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.Unlock()
		for _, c := range clients {
			c.Conn.Close()
		}
	})
}

// Register adds a connection and reports whether it is the user's first
// live connection (the caller flips presence online only then).
func (h *Hub) Register(userID uint, username string, conn Conn) (*ClientConnection, bool) {
	client := &ClientConnection{
		ID:         h.nextID.Add(1),
		UserID:     userID,
		Username:   username,
		Conn:       conn,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
		groups:     make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.userConns[userID]++
	first := h.userConns[userID] == 1
	total := len(h.clients)
	h.mu.Unlock()

	go h.pingRoutine(client)

	log.Printf("ws hub: user %d connected conn=%d (total: %d)", userID, client.ID, total)
	return client, first
}

// Unregister removes a connection and reports whether it was the user's
// last one (the caller flips presence offline only then). Safe to call
// more than once for the same connection.
func (h *Hub) Unregister(c *ClientConnection) bool {
	h.mu.Lock()
	if _, exists := h.clients[c.ID]; !exists {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, c.ID)
	for key := range c.groups {
		h.removeFromGroup(key, c)
	}
	h.userConns[c.UserID]--
	last := h.userConns[c.UserID] <= 0
	if last {
		delete(h.userConns, c.UserID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.markClosed()

	log.Printf("ws hub: user %d disconnected conn=%d (total: %d)", c.UserID, c.ID, total)
	return last
}

// Join subscribes a connection to a group. Joining a group the connection
// is already in is a no-op.
func (h *Hub) Join(groupKey string, c *ClientConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.groups[groupKey] {
		return
	}
	g, ok := h.groups[groupKey]
	if !ok {
		g = &group{members: make(map[uint64]*ClientConnection)}
		h.groups[groupKey] = g
	}
	g.members[c.ID] = c
	c.groups[groupKey] = true
}

// Leave removes a connection from a group; idempotent.
func (h *Hub) Leave(groupKey string, c *ClientConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.groups[groupKey] {
		return
	}
	delete(c.groups, groupKey)
	h.removeFromGroup(groupKey, c)
}

// removeFromGroup must be called with h.mu held.
func (h *Hub) removeFromGroup(groupKey string, c *ClientConnection) {
	g, ok := h.groups[groupKey]
	if !ok {
		return
	}
	delete(g.members, c.ID)
	if len(g.members) == 0 {
		delete(h.groups, groupKey)
	}
}

// Broadcast delivers an event to every connection in the group except
// exclude. Delivery is best-effort per member: a dead connection is closed
// (its read loop then runs disconnect cleanup) and the rest still receive
// the event.
func (h *Hub) Broadcast(groupKey string, event interface{}, exclude *ClientConnection) BroadcastResult {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal broadcast for group %s: %v", groupKey, err)
		return BroadcastResult{}
	}

	h.mu.RLock()
	g, ok := h.groups[groupKey]
	if !ok {
		h.mu.RUnlock()
		return BroadcastResult{}
	}
	members := make([]*ClientConnection, 0, len(g.members))
	for _, c := range g.members {
		if exclude != nil && c.ID == exclude.ID {
			continue
		}
		members = append(members, c)
	}
	h.mu.RUnlock()

	// Serialize fan-outs per group so members see them in acceptance order.
	g.sendMu.Lock()
	defer g.sendMu.Unlock()

	var result BroadcastResult
	for _, c := range members {
		if err := c.write(websocket.TextMessage, data); err != nil {
			log.Printf("ws hub: deliver to user %d conn=%d failed: %v", c.UserID, c.ID, err)
			result.Failed++
			c.Conn.Close()
			continue
		}
		result.Delivered++
	}
	return result
}

// Touch records a pong from the connection.
func (h *Hub) Touch(c *ClientConnection) {
	h.mu.Lock()
	c.LastPong = time.Now()
	h.mu.Unlock()
}

// ConnectionCount returns the number of live connections for a user.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.userConns[userID]
}

// GroupSize returns the number of connections subscribed to a group.
func (h *Hub) GroupSize(groupKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if g, ok := h.groups[groupKey]; ok {
		return len(g.members)
	}
	return 0
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PongTimeout is the read deadline handlers arm on the raw connection.
func (h *Hub) PongTimeout() time.Duration {
	return h.pongTimeout
}

// pingRoutine sends periodic pings to keep the connection alive.
func (h *Hub) pingRoutine(client *ClientConnection) {
	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			client.writeMu.Lock()
			err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
			client.writeMu.Unlock()
			if err != nil {
				log.Printf("ws hub: ping failed user=%d conn=%d: %v", client.UserID, client.ID, err)
				client.Conn.Close()
				return
			}
		}
	}
}

// connectionHealthChecker closes connections that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.mu.RLock()
			var dead []*ClientConnection
			now := time.Now()
			for _, client := range h.clients {
				if now.Sub(client.LastPong) > h.pongTimeout {
					dead = append(dead, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range dead {
				log.Printf("ws hub: closing dead connection user=%d conn=%d (no pong)", client.UserID, client.ID)
				client.Conn.Close()
			}
		}
	}
}
