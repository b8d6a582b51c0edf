package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket connections and fans events out to instance
// participants. Player IDs are the opaque IDs carried in tokens.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection // player_id -> connection
	instances   map[string][]string    // instance_id -> []player_id
	logger      zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		instances:   make(map[string][]string),
		logger:      logger.With().Str("component", "realtime").Logger(),
	}
}

// RegisterConnection adds a connection for a player, replacing any
// previous one.
func (h *Hub) RegisterConnection(playerID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[playerID]; exists {
		old.Close()
	}

	h.connections[playerID] = conn
	h.logger.Info().Str("player_id", playerID).Msg("connection registered")
}

// UnregisterConnection removes a connection and all instance
// memberships for the player.
func (h *Hub) UnregisterConnection(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[playerID]; exists {
		conn.Close()
		delete(h.connections, playerID)
		h.logger.Info().Str("player_id", playerID).Msg("connection unregistered")
	}

	for instanceID, players := range h.instances {
		for i, pid := range players {
			if pid == playerID {
				h.instances[instanceID] = append(players[:i], players[i+1:]...)
				break
			}
		}
	}
}

// JoinInstance associates a player with an instance for targeted
// broadcasts.
func (h *Hub) JoinInstance(instanceID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := h.instances[instanceID]
	for _, pid := range players {
		if pid == playerID {
			return
		}
	}
	h.instances[instanceID] = append(players, playerID)
}

// LeaveInstance removes a player from an instance's broadcast list.
func (h *Hub) LeaveInstance(instanceID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := h.instances[instanceID]
	for i, pid := range players {
		if pid == playerID {
			h.instances[instanceID] = append(players[:i], players[i+1:]...)
			break
		}
	}
}

// DropInstance forgets an instance's broadcast list entirely.
func (h *Hub) DropInstance(instanceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.instances, instanceID)
}

// BroadcastToInstance sends a message to every player in an instance.
// Players without a live connection are skipped.
func (h *Hub) BroadcastToInstance(instanceID string, msg Message) error {
	h.mu.RLock()
	players := append([]string(nil), h.instances[instanceID]...)
	h.mu.RUnlock()

	var firstErr error
	for _, playerID := range players {
		if err := h.SendToPlayer(playerID, msg); err != nil && err != ErrConnectionNotFound {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BroadcastAll sends a message to every connected player.
func (h *Hub) BroadcastAll(msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var firstErr error
	for playerID, conn := range h.connections {
		if err := conn.Send(msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("player_id", playerID).Msg("broadcast_all_send_failed")
		}
	}
	return firstErr
}

// SendToPlayer delivers a message to a single player.
func (h *Hub) SendToPlayer(playerID string, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[playerID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

// Connection wraps a WebSocket connection with a buffered send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a raw WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 256),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump drains the send queue onto the wire.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump receives messages and calls the handler until the
// connection dies.
func (c *Connection) ReadPump(handler func(Message) error) {
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			break
		}

		if err := handler(msg); err != nil {
			c.logger.Warn().Err(err).Msg("message handler error")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Player connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
