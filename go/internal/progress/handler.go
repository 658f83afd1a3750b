package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pkratz/huntboard/go/internal/models"
)

// LifecycleApp defines what the HTTP handler needs from the progress app.
type LifecycleApp interface {
	Start(ctx context.Context, teamID, questionID uuid.UUID) (*StartResult, error)
	Tip(ctx context.Context, teamID, questionID uuid.UUID, tipNumber int) (*TipResult, error)
	Answer(ctx context.Context, teamID, questionID uuid.UUID, text string) (*AnswerResult, error)
	Complete(ctx context.Context, teamID, questionID uuid.UUID, reason models.CompletionReason) error
}

// Handler exposes the four lifecycle operations as JSON endpoints.
type Handler struct {
	app LifecycleApp
}

func NewHandler(app LifecycleApp) *Handler {
	return &Handler{app: app}
}

// RegisterRoutes registers the lifecycle routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/progress/start", h.HandleStart)
	mux.HandleFunc("/api/progress/tip", h.HandleTip)
	mux.HandleFunc("/api/progress/answer", h.HandleAnswer)
	mux.HandleFunc("/api/progress/complete", h.HandleComplete)
}

type pairRequest struct {
	TeamID     uuid.UUID `json:"team_id"`
	QuestionID uuid.UUID `json:"question_id"`
}

type tipRequest struct {
	pairRequest
	TipNumber int `json:"tip_number"`
}

type answerRequest struct {
	pairRequest
	Text string `json:"text"`
}

type completeRequest struct {
	pairRequest
	Reason models.CompletionReason `json:"reason"`
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decodePost(w, r, &req) {
		return
	}

	result, err := h.app.Start(r.Context(), req.TeamID, req.QuestionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleTip(w http.ResponseWriter, r *http.Request) {
	var req tipRequest
	if !decodePost(w, r, &req) {
		return
	}

	result, err := h.app.Tip(r.Context(), req.TeamID, req.QuestionID, req.TipNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodePost(w, r, &req) {
		return
	}

	result, err := h.app.Answer(r.Context(), req.TeamID, req.QuestionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodePost(w, r, &req) {
		return
	}

	switch req.Reason {
	case models.CompletionReasonTimeout, models.CompletionReasonMaxAttempts, models.CompletionReasonSolution:
	default:
		http.Error(w, "invalid completion reason", http.StatusBadRequest)
		return
	}

	if err := h.app.Complete(r.Context(), req.TeamID, req.QuestionID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidTipNumber):
		status = http.StatusBadRequest
	case errors.Is(err, ErrEventNotStarted),
		errors.Is(err, ErrAlreadyAnswered),
		errors.Is(err, ErrMaxAttemptsReached),
		errors.Is(err, ErrAlreadyCompleted):
		status = http.StatusConflict
	default:
		log.Error().Err(err).Msg("lifecycle operation failed")
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
