package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProgressState defines the lifecycle state of a team/question pair.
type ProgressState string

const (
	ProgressStateNotStarted         ProgressState = "NOT_STARTED"
	ProgressStateInProgress         ProgressState = "IN_PROGRESS"
	ProgressStateSolved             ProgressState = "SOLVED"
	ProgressStateTimedOut           ProgressState = "TIMED_OUT"
	ProgressStateMaxAttemptsReached ProgressState = "MAX_ATTEMPTS_REACHED"
	ProgressStateSolutionRevealed   ProgressState = "SOLUTION_REVEALED"
)

// CompletionReason is the caller-supplied reason for an explicit completion.
type CompletionReason string

const (
	CompletionReasonTimeout     CompletionReason = "timeout"
	CompletionReasonMaxAttempts CompletionReason = "max_attempts"
	CompletionReasonSolution    CompletionReason = "solution"
)

// MaxAttempts is the number of answer attempts a team gets per question.
const MaxAttempts = 3

// SolutionTipLevel is the tip level that reveals the full solution.
const SolutionTipLevel = 3

// TeamProgress is the persistent record of one team's interaction with one
// question. One row per (team_id, question_id); mutated only by the progress app.
type TeamProgress struct {
	ID            uuid.UUID       `json:"id"`
	TeamID        uuid.UUID       `json:"team_id"`
	QuestionID    uuid.UUID       `json:"question_id"`
	Attempt1      *string         `json:"attempt_1,omitempty"`
	Attempt2      *string         `json:"attempt_2,omitempty"`
	Attempt3      *string         `json:"attempt_3,omitempty"`
	UsedTip       int             `json:"used_tip"`
	Correct       bool            `json:"correct"`
	Completed     bool            `json:"completed"`
	TimeStarted   time.Time       `json:"time_started"`
	TimeAnswered  *time.Time      `json:"time_answered,omitempty"`
	PointsAwarded int             `json:"points_awarded"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// AttemptsUsed returns how many answer slots are filled. Slots fill left to
// right with no gaps, so the first empty slot is also the count.
func (p *TeamProgress) AttemptsUsed() int {
	n := 0
	for _, a := range []*string{p.Attempt1, p.Attempt2, p.Attempt3} {
		if a == nil {
			break
		}
		n++
	}
	return n
}

// State derives the lifecycle state from the stored flags.
func (p *TeamProgress) State() ProgressState {
	if !p.Completed {
		return ProgressStateInProgress
	}
	switch {
	case p.Correct:
		return ProgressStateSolved
	case p.UsedTip >= SolutionTipLevel:
		return ProgressStateSolutionRevealed
	case p.AttemptsUsed() >= MaxAttempts:
		return ProgressStateMaxAttemptsReached
	default:
		return ProgressStateTimedOut
	}
}
