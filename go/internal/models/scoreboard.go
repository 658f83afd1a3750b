package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreboardEntry is one team's line on an event scoreboard.
type ScoreboardEntry struct {
	Rank               int        `json:"rank"`
	TeamID             uuid.UUID  `json:"team_id"`
	TeamName           string     `json:"team_name"`
	TotalPoints        int        `json:"total_points"`
	QuestionsSolved    int        `json:"questions_solved"`
	CompletedQuestions int        `json:"completed_questions"`
	LastAnswerTime     *time.Time `json:"last_answer_time,omitempty"`
}

// Scoreboard is the full ranked snapshot for one event. Snapshots are always
// broadcast whole, never as diffs.
type Scoreboard struct {
	EventID    uuid.UUID         `json:"event_id"`
	Entries    []ScoreboardEntry `json:"entries"`
	ComputedAt time.Time         `json:"computed_at"`
}
