package models

import (
	"github.com/google/uuid"
)

// Difficulty defines the difficulty tier of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is the read-only view of a question record owned by the CRUD layer.
// The progress service only consumes identifiers, difficulty, time limit,
// solution text and tips.
type Question struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	Difficulty       Difficulty `json:"difficulty"`
	Solution         string     `json:"-"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Tip1             string     `json:"-"`
	Tip2             string     `json:"-"`
	Tip3             string     `json:"-"`
}

// Tip returns the tip text for a level in 1..3. Level 3 is the full solution.
func (q *Question) Tip(level int) string {
	switch level {
	case 1:
		return q.Tip1
	case 2:
		return q.Tip2
	case 3:
		return q.Tip3
	default:
		return ""
	}
}
