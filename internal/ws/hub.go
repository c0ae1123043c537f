package ws

import (
	"log"
	"sync"

	"forum-realtime/internal/models"
)

// Conn is the transport side of a client. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client wraps a websocket connection with its identity and a write lock.
// Room fan-out and direct notify deliveries can target the same socket
// concurrently, and gorilla connections do not allow concurrent writers.
type Client struct {
	Info ConnInfo

	conn Conn
	mu   sync.Mutex
}

// NewClient wraps a connection.
func NewClient(conn Conn, info ConnInfo) *Client {
	return &Client{conn: conn, Info: info}
}

// Send writes one server envelope to the client.
func (c *Client) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(models.ServerEnvelope{Event: event, Payload: payload})
}

// SendAck writes an ack frame to the client.
func (c *Client) SendAck(ack models.Ack) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(ack)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub maintains the set of live connections and their room memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client          // by connection id
	rooms   map[string]map[*Client]bool // by room key
	joined  map[*Client]map[string]bool // rooms per client, for disconnect cleanup
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]bool),
		joined:  make(map[*Client]map[string]bool),
	}
}

// AddClient registers a connection with the hub.
func (h *Hub) AddClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.Info.ConnID] = client
}

// BindUser assigns an identity to a live connection. Identity can arrive
// after registration when a client self-declares via its online event.
// Guarded by the hub lock because room lookups read Info.UserID.
func (h *Hub) BindUser(client *Client, userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Info.UserID = userID
}

// Snapshot returns a copy of the client's ConnInfo consistent with concurrent
// BindUser calls. Disconnect reporting reads through this so an identity bound
// after the handshake is not lost.
func (h *Hub) Snapshot(client *Client) ConnInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.Info
}

// RemoveClient drops a connection and all its room memberships.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.Info.ConnID)
	for room := range h.joined[client] {
		h.removeFromRoomLocked(room, client)
	}
	delete(h.joined, client)
}

// JoinRoom adds the client to a room.
func (h *Hub) JoinRoom(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	if _, ok := h.joined[client]; !ok {
		h.joined[client] = make(map[string]bool)
	}
	h.joined[client][room] = true
}

// LeaveRoom removes the client from a room.
func (h *Hub) LeaveRoom(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(room, client)
	if rooms, ok := h.joined[client]; ok {
		delete(rooms, room)
	}
}

func (h *Hub) removeFromRoomLocked(room string, client *Client) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// IsUserInRoom reports whether any of the user's connections is a member of
// the room.
func (h *Hub) IsUserInRoom(room string, userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		if client.Info.UserID == userID {
			return true
		}
	}
	return false
}

// BroadcastToRoom sends an event to every room member. excludeConnID, when
// non-empty, suppresses delivery to that connection.
func (h *Hub) BroadcastToRoom(room, event string, payload any, excludeConnID string) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		if excludeConnID != "" && client.Info.ConnID == excludeConnID {
			continue
		}
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		h.send(client, event, payload)
	}
}

// BroadcastAll sends an event to every live connection.
func (h *Hub) BroadcastAll(event string, payload any) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.send(client, event, payload)
	}
}

// SendToConn delivers an event to a single connection. It reports whether a
// live connection with that id existed.
func (h *Hub) SendToConn(connID, event string, payload any) bool {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	h.send(client, event, payload)
	return true
}

func (h *Hub) send(client *Client, event string, payload any) {
	if err := client.Send(event, payload); err != nil {
		log.Printf("websocket write error conn=%s: %v", client.Info.ConnID, err)
		client.Close()
		h.RemoveClient(client)
	}
}
