package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is the read-only view of a puzzle event record owned by the CRUD layer.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Started   bool       `json:"started"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Team is the read-only view of a team record owned by the CRUD layer.
type Team struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
}
