package scoreboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pkratz/huntboard/go/internal/models"
)

// ScoreboardApp defines what the HTTP handler needs from the scoreboard app.
type ScoreboardApp interface {
	GetScoreboard(ctx context.Context, eventID uuid.UUID) (*models.Scoreboard, error)
}

// Handler serves pull-style scoreboard reads over HTTP.
type Handler struct {
	app ScoreboardApp
}

func NewHandler(app ScoreboardApp) *Handler {
	return &Handler{app: app}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/scoreboard", h.HandleGetScoreboard)
}

// HandleGetScoreboard handles GET /api/scoreboard?event_id=
func (h *Handler) HandleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

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

	board, err := h.app.GetScoreboard(r.Context(), eventID)
	if err != nil {
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("failed to compute scoreboard")
		http.Error(w, "failed to compute scoreboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(board); err != nil {
		log.Error().Err(err).Msg("failed to encode scoreboard response")
	}
}
