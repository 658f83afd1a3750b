package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pkratz/huntboard/go/internal/events"
	"github.com/pkratz/huntboard/go/internal/models"
)

// ScoreboardEvent is the message pushed to websocket subscribers of an event.
type ScoreboardEvent struct {
	ID        string          `json:"id"`        // message UUID
	EventID   string          `json:"event_id"`  // puzzle event UUID
	Type      string          `json:"type"`      // see the events package
	Timestamp time.Time       `json:"timestamp"` // creation time
	Data      json.RawMessage `json:"data"`      // type-specific payload
}

// NewScoreboardSnapshotEvent wraps a full ranked snapshot. Subscribers always
// receive the whole board, never a diff, so a missed message cannot leave a
// viewer diverged for longer than one push.
func NewScoreboardSnapshotEvent(board *models.Scoreboard, now time.Time) (*ScoreboardEvent, error) {
	data, err := json.Marshal(board)
	if err != nil {
		return nil, err
	}
	return &ScoreboardEvent{
		ID:        uuid.New().String(),
		EventID:   board.EventID.String(),
		Type:      events.TypeScoreboardUpdated,
		Timestamp: now,
		Data:      data,
	}, nil
}
