package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Event is one unsent row of the scoreboard outbox table.
type Event struct {
	ID        uuid.UUID
	EventID   uuid.UUID // owning puzzle event, becomes the subject suffix
	EventType string
	Payload   []byte
	CreatedAt time.Time
}
