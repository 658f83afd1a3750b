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
)

// ConnectionManager manages websocket subscriber groups, one per puzzle event.
type ConnectionManager struct {
	// Connection pools organized by event ID
	eventConnections map[uuid.UUID]map[*Connection]bool
	mu               sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	// Event broadcasting
	broadcastCh chan BroadcastMessage

	// Invoked when a subscriber asks for an immediate snapshot. Set by the
	// gateway service before Start.
	refreshFn func(ctx context.Context, eventID uuid.UUID) (*ScoreboardEvent, error)
}

// Connection represents a websocket subscription of one viewer to one event.
type Connection struct {
	ID      string
	EventID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to an event's subscribers.
type BroadcastMessage struct {
	EventID uuid.UUID
	Event   *ScoreboardEvent
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		eventConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000), // buffer for bursty pushes
	}
}

// SetRefreshFunc installs the on-demand snapshot callback.
func (cm *ConnectionManager) SetRefreshFunc(fn func(ctx context.Context, eventID uuid.UUID) (*ScoreboardEvent, error)) {
	cm.refreshFn = fn
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

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

// UpgradeConnection upgrades an HTTP connection to WebSocket and subscribes it
// to an event's group.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("event_id", eventID.String()).
		Msg("scoreboard subscriber connected")

	return connection, nil
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.eventConnections[conn.EventID] == nil {
		cm.eventConnections[conn.EventID] = make(map[*Connection]bool)
	}
	cm.eventConnections[conn.EventID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("event_id", conn.EventID.String()).
		Int("total_connections", len(cm.eventConnections[conn.EventID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if connections, exists := cm.eventConnections[conn.EventID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			close(conn.Send)

			// Clean up empty subscriber groups
			if len(connections) == 0 {
				delete(cm.eventConnections, conn.EventID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("event_id", conn.EventID.String()).
				Msg("scoreboard subscriber disconnected")
		}
	}
}

// BroadcastToEvent queues an event for delivery to all subscribers of a
// puzzle event.
func (cm *ConnectionManager) BroadcastToEvent(eventID uuid.UUID, event *ScoreboardEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{EventID: eventID, Event: event}:
	default:
		log.Warn().Str("event_id", eventID.String()).Msg("broadcast channel full, dropping message")
	}
}

// ActiveEvents returns the events that currently have at least one subscriber.
func (cm *ConnectionManager) ActiveEvents() []uuid.UUID {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(cm.eventConnections))
	for eventID := range cm.eventConnections {
		out = append(out, eventID)
	}
	return out
}

// handleBroadcast processes a broadcast message
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.eventConnections[message.EventID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	// Snapshot the pool so the lock is not held during delivery
	targetConnections := make([]*Connection, 0, len(connections))
	for conn := range connections {
		targetConnections = append(targetConnections, conn)
	}
	cm.mu.RUnlock()

	// Marshal the event once
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targetConnections {
		select {
		case conn.Send <- eventData:
		default:
			// Send buffer full: the subscriber is not delivered to this
			// round but stays subscribed; the next push or the periodic
			// repush catches it up.
			log.Warn().
				Str("connection_id", conn.ID).
				Str("event_id", message.EventID.String()).
				Msg("subscriber send buffer full, skipping delivery")
		}
	}

	log.Debug().
		Str("event_type", message.Event.Type).
		Str("event_id", message.EventID.String()).
		Int("connections", len(targetConnections)).
		Msg("event broadcasted")
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	totalConnections := 0
	eventCounts := make(map[string]int)

	for eventID, connections := range cm.eventConnections {
		count := len(connections)
		totalConnections += count
		eventCounts[eventID.String()] = count
	}

	return map[string]interface{}{
		"total_connections": totalConnections,
		"active_events":     len(cm.eventConnections),
		"event_connections": eventCounts,
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
				// Channel was closed
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
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
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

// handleClientMessage processes messages received from the client. The only
// supported command is an on-demand refresh: the subscriber gets an immediate
// snapshot without waiting for the next push.
func (c *Connection) handleClientMessage(message []byte) {
	var cmd struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(message, &cmd); err != nil {
		log.Debug().
			Str("connection_id", c.ID).
			Msg("ignoring malformed client message")
		return
	}

	if cmd.Action != "refresh" || c.Manager.refreshFn == nil {
		return
	}

	event, err := c.Manager.refreshFn(context.Background(), c.EventID)
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", c.ID).
			Str("event_id", c.EventID.String()).
			Msg("on-demand refresh failed")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal refresh snapshot")
		return
	}

	select {
	case c.Send <- data:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Msg("subscriber send buffer full, dropping refresh")
	}
}
