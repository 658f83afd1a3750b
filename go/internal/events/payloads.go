// Package events defines the domain event types and payloads exchanged
// between the progress service, the outbox relay and the scoreboard gateway.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TypeAnswerCorrect is emitted when a team solves a question.
	TypeAnswerCorrect = "AnswerCorrect"

	// TypeQuestionCompleted is emitted when a (team, question) pair reaches
	// any terminal state other than Solved.
	TypeQuestionCompleted = "QuestionCompleted"

	// TypeScoreboardUpdated carries a full ranked scoreboard snapshot to
	// websocket subscribers.
	TypeScoreboardUpdated = "ScoreboardUpdated"
)

// AnswerCorrectPayload describes a solved question.
type AnswerCorrectPayload struct {
	EventID    uuid.UUID `json:"event_id"`
	TeamID     uuid.UUID `json:"team_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Points     int       `json:"points"`
	AnsweredAt time.Time `json:"answered_at"`
}

// QuestionCompletedPayload describes a terminal transition without a correct
// answer (timeout, attempts exhausted, solution revealed).
type QuestionCompletedPayload struct {
	EventID    uuid.UUID `json:"event_id"`
	TeamID     uuid.UUID `json:"team_id"`
	QuestionID uuid.UUID `json:"question_id"`
	State      string    `json:"state"`
}
