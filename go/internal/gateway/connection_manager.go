package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/game"
)

// ConnectionManager manages WebSocket connections and fans room events out to them
type ConnectionManager struct {
	// Subscriptions organized by room code
	roomConnections map[string]map[*Connection]bool
	connections     map[string]*Connection
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	app      GameApp

	broadcastCh chan BroadcastMessage
	done        chan struct{}
	doneOnce    sync.Once
}

// Connection represents a WebSocket connection to a client. Its ID is the
// session id the game knows the client by.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// Guarded by Manager.mu
	rooms  map[string]bool
	closed bool

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	CommandTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents an event to deliver to every subscriber of a room
type BroadcastMessage struct {
	RoomCode string
	Event    *game.Event
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		CommandTimeout:  5 * time.Second,
		MaxMessageSize:  16 * 1024, // word lists can be long
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin:     AllowOrigins([]string{"*"}),
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, app GameApp) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[string]map[*Connection]bool),
		connections:     make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		app:         app,
		broadcastCh: make(chan BroadcastMessage, 1000),
		done:        make(chan struct{}),
	}
}

// Start processes broadcast messages in arrival order until ctx is cancelled
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	defer cm.doneOnce.Do(func() { close(cm.done) })

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and greets the client with its session id
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		rooms:       make(map[string]bool),
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)
	connection.sendJSON(WelcomeMessage{
		Type: MessageTypeWelcome,
		Data: Welcome{ConnectionID: connection.ID},
	})

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return nil
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn
	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and all of its room subscriptions
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn.closed {
		return
	}
	conn.closed = true
	close(conn.Send)
	delete(cm.connections, conn.ID)

	for code := range conn.rooms {
		cm.removeSubscriptionLocked(code, conn)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Msg("connection unregistered")
}

// Join adds the session to a room's fan-out set. The game calls it under the
// room lock once a create, join or reconnect is accepted.
func (cm *ConnectionManager) Join(roomCode, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, ok := cm.connections[connID]
	if !ok || conn.closed {
		return
	}
	if cm.roomConnections[roomCode] == nil {
		cm.roomConnections[roomCode] = make(map[*Connection]bool)
	}
	cm.roomConnections[roomCode][conn] = true
	conn.rooms[roomCode] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room_code", roomCode).
		Int("subscribers", len(cm.roomConnections[roomCode])).
		Msg("connection subscribed to room")
}

// Leave removes the session from a room's fan-out set
func (cm *ConnectionManager) Leave(roomCode, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[connID]; ok {
		cm.removeSubscriptionLocked(roomCode, conn)
	}
}

// subscribers returns how many connections receive a room's events
func (cm *ConnectionManager) subscribers(roomCode string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.roomConnections[roomCode])
}

func (cm *ConnectionManager) removeSubscriptionLocked(roomCode string, conn *Connection) {
	delete(conn.rooms, roomCode)
	if connections, exists := cm.roomConnections[roomCode]; exists {
		delete(connections, conn)
		if len(connections) == 0 {
			delete(cm.roomConnections, roomCode)
		}
	}
}

// BroadcastToRoom queues an event for every subscriber of a room. It blocks
// while the queue is full so events are never dropped or reordered.
func (cm *ConnectionManager) BroadcastToRoom(roomCode string, event *game.Event) {
	select {
	case cm.broadcastCh <- BroadcastMessage{RoomCode: roomCode, Event: event}:
	case <-cm.done:
		log.Warn().Str("room_code", roomCode).Msg("connection manager stopped, dropping event")
	}
}

// handleBroadcast delivers a queued event
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	var slow []*Connection
	delivered := 0

	cm.mu.RLock()
	for conn := range cm.roomConnections[message.RoomCode] {
		select {
		case conn.Send <- eventData:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("room_code", message.RoomCode).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	if message.Event.Type == game.EventRoomClosed {
		cm.dropRoom(message.RoomCode)
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("room_code", message.RoomCode).
		Int("connections", delivered).
		Msg("event broadcasted")
}

// dropRoom removes every subscription of a closed room
func (cm *ConnectionManager) dropRoom(roomCode string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for conn := range cm.roomConnections[roomCode] {
		delete(conn.rooms, roomCode)
	}
	delete(cm.roomConnections, roomCode)
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	roomCounts := make(map[string]int, len(cm.roomConnections))
	for code, connections := range cm.roomConnections {
		roomCounts[code] = len(connections)
	}

	return map[string]interface{}{
		"total_connections": len(cm.connections),
		"active_rooms":      len(cm.roomConnections),
		"room_connections":  roomCounts,
	}
}

// sendJSON queues a direct message for this connection only
func (c *Connection) sendJSON(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal message")
		return
	}

	c.Manager.mu.RLock()
	defer c.Manager.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Warn().Str("connection_id", c.ID).Msg("connection send buffer full, dropping reply")
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads client commands until the connection fails, then reports the disconnect to the game
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.CommandTimeout)
		defer cancel()
		c.Manager.app.HandleDisconnect(ctx, c.ID)
		log.Info().Str("connection_id", c.ID).Msg("WebSocket connection closed")
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
