package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles websocket upgrade requests for scoreboard viewers.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleScoreboardConnection subscribes a viewer to an event's scoreboard.
// Unsubscribe is closing the socket.
func (h *WebSocketHandler) HandleScoreboardConnection(w http.ResponseWriter, r *http.Request) {
	eventIDStr := r.URL.Query().Get("event_id")
	if eventIDStr == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		http.Error(w, "invalid event_id format", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionManager.UpgradeConnection(w, r, eventID)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_id", eventID.String()).
			Msg("failed to upgrade WebSocket connection")
		// Upgrade already wrote the HTTP error response.
		return
	}

	// New subscribers start from a fresh snapshot instead of waiting for the
	// next push.
	if h.connectionManager.refreshFn != nil {
		event, err := h.connectionManager.refreshFn(r.Context(), eventID)
		if err != nil {
			log.Error().
				Err(err).
				Str("event_id", eventID.String()).
				Msg("failed to compute initial snapshot")
			return
		}
		data, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal initial snapshot")
			return
		}
		select {
		case conn.Send <- data:
		default:
		}
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	stats := h.connectionManager.GetConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/scoreboard", h.HandleScoreboardConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
