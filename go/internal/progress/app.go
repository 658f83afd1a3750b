package progress

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/pkratz/huntboard/go/internal/catalog"
	"github.com/pkratz/huntboard/go/internal/events"
	"github.com/pkratz/huntboard/go/internal/models"
	"github.com/pkratz/huntboard/go/internal/scoring"
)

// ProgressRepository defines what the app layer needs from the progress store.
type ProgressRepository interface {
	EnsureRow(ctx context.Context, teamID, questionID uuid.UUID, startedAt time.Time) (*models.TeamProgress, bool, error)
	GetByTeamQuestion(ctx context.Context, teamID, questionID uuid.UUID) (*models.TeamProgress, error)
	RecordTip(ctx context.Context, id uuid.UUID, tipNumber int) (bool, error)
	RecordAnswer(ctx context.Context, req RecordAnswerRequest) (*models.TeamProgress, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, reason models.CompletionReason) (bool, error)
}

// CatalogRepository is the read-only contract against the CRUD layer's tables.
type CatalogRepository interface {
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// OutboxApp defines what the app layer needs from the outbox.
type OutboxApp interface {
	InsertAnswerCorrect(ctx context.Context, eventID uuid.UUID, payload []byte) error
	InsertQuestionCompleted(ctx context.Context, eventID uuid.UUID, payload []byte) error
}

// App enforces the per-team-per-question lifecycle state machine. All mutation
// of the progress store goes through here.
type App struct {
	repo    ProgressRepository
	catalog CatalogRepository
	outbox  OutboxApp
	clock   clockwork.Clock
}

func NewApp(repo ProgressRepository, cat CatalogRepository, outbox OutboxApp, clock clockwork.Clock) *App {
	return &App{
		repo:    repo,
		catalog: cat,
		outbox:  outbox,
		clock:   clock,
	}
}

type StartResult struct {
	TimeStarted time.Time `json:"time_started"`
	Existing    bool      `json:"existing"`
}

type TipResult struct {
	TipNumber int    `json:"tip_number"`
	TipText   string `json:"tip_text"`
}

type AnswerResult struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points,omitempty"`

	// Zero on the third wrong answer is meaningful, so no omitempty.
	AttemptsRemaining int `json:"attempts_remaining"`
}

// questionContext is the resolved external state every operation needs.
type questionContext struct {
	question *models.Question
	team     *models.Team
	event    *models.Event
}

func (a *App) loadContext(ctx context.Context, teamID, questionID uuid.UUID) (*questionContext, error) {
	question, err := a.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	team, err := a.catalog.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if team.EventID != question.EventID {
		// A team acting on another event's question is indistinguishable
		// from a missing question, on purpose.
		return nil, ErrNotFound
	}

	event, err := a.catalog.GetEvent(ctx, team.EventID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &questionContext{question: question, team: team, event: event}, nil
}

// Start begins (or re-reads) a team's progress on a question. Idempotent: the
// second and later calls return the original time_started untouched.
func (a *App) Start(ctx context.Context, teamID, questionID uuid.UUID) (*StartResult, error) {
	qc, err := a.loadContext(ctx, teamID, questionID)
	if err != nil {
		return nil, err
	}
	if !qc.event.Started {
		return nil, ErrEventNotStarted
	}

	row, created, err := a.repo.EnsureRow(ctx, teamID, questionID, a.clock.Now())
	if err != nil && !isLifecycleErr(err) {
		// Start is the one operation with an idempotent-retry contract, so a
		// transient store failure gets a single retry.
		log.Warn().
			Err(err).
			Str("team_id", teamID.String()).
			Str("question_id", questionID.String()).
			Msg("start failed, retrying once")
		row, created, err = a.repo.EnsureRow(ctx, teamID, questionID, a.clock.Now())
	}
	if err != nil {
		return nil, err
	}

	return &StartResult{TimeStarted: row.TimeStarted, Existing: !created}, nil
}

// Tip reveals a tip level for the team. used_tip only moves up; repeated or
// lower requests are no-ops that still return the requested tip text. Tip 3 is
// the solution: it completes the row atomically and the question can never
// score afterwards.
func (a *App) Tip(ctx context.Context, teamID, questionID uuid.UUID, tipNumber int) (*TipResult, error) {
	if tipNumber < 1 || tipNumber > models.SolutionTipLevel {
		return nil, ErrInvalidTipNumber
	}

	qc, err := a.loadContext(ctx, teamID, questionID)
	if err != nil {
		return nil, err
	}

	row, _, err := a.repo.EnsureRow(ctx, teamID, questionID, a.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := a.enforceDeadline(ctx, qc, row); err != nil {
		return nil, err
	}
	if row.Completed {
		return nil, ErrAlreadyCompleted
	}

	if tipNumber > row.UsedTip {
		applied, err := a.repo.RecordTip(ctx, row.ID, tipNumber)
		if err != nil {
			return nil, err
		}
		if applied && tipNumber >= models.SolutionTipLevel {
			a.emitQuestionCompleted(ctx, qc, row, models.ProgressStateSolutionRevealed)
		}
	}

	return &TipResult{TipNumber: tipNumber, TipText: qc.question.Tip(tipNumber)}, nil
}

// Answer submits an answer attempt. Comparison is against the trimmed,
// case-insensitive solution string.
func (a *App) Answer(ctx context.Context, teamID, questionID uuid.UUID, text string) (*AnswerResult, error) {
	qc, err := a.loadContext(ctx, teamID, questionID)
	if err != nil {
		return nil, err
	}
	if !qc.event.Started {
		return nil, ErrEventNotStarted
	}

	row, _, err := a.repo.EnsureRow(ctx, teamID, questionID, a.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := a.enforceDeadline(ctx, qc, row); err != nil {
		return nil, err
	}
	if row.Correct {
		return nil, ErrAlreadyAnswered
	}
	if row.AttemptsUsed() >= models.MaxAttempts {
		return nil, ErrMaxAttemptsReached
	}
	if row.Completed {
		return nil, ErrAlreadyCompleted
	}

	now := a.clock.Now()
	correct := answersMatch(text, qc.question.Solution)

	points := 0
	if correct {
		elapsed := int(now.Sub(row.TimeStarted).Seconds())
		points = scoring.Score(qc.question.Difficulty, qc.question.TimeLimitSeconds, elapsed, row.UsedTip)
	}

	updated, err := a.repo.RecordAnswer(ctx, RecordAnswerRequest{
		TeamID:     teamID,
		QuestionID: questionID,
		Text:       text,
		Correct:    correct,
		Points:     points,
		AnsweredAt: now,
	})
	if err != nil {
		return nil, err
	}

	if updated.Correct {
		a.emitAnswerCorrect(ctx, qc, updated)
		return &AnswerResult{Correct: true, Points: updated.PointsAwarded}, nil
	}

	if updated.Completed {
		a.emitQuestionCompleted(ctx, qc, updated, models.ProgressStateMaxAttemptsReached)
	}
	return &AnswerResult{
		Correct:           false,
		AttemptsRemaining: models.MaxAttempts - updated.AttemptsUsed(),
	}, nil
}

// Complete is the explicit caller-driven transition to a terminal state, used
// when a question's time budget elapses client-side. Idempotent: completing an
// already-terminal row is an ack, not an error. Unlike start, tip and answer
// it never creates the row; a pair that was never touched stays untouched.
func (a *App) Complete(ctx context.Context, teamID, questionID uuid.UUID, reason models.CompletionReason) error {
	qc, err := a.loadContext(ctx, teamID, questionID)
	if err != nil {
		return err
	}

	row, err := a.repo.GetByTeamQuestion(ctx, teamID, questionID)
	if err != nil {
		return err
	}

	applied, err := a.repo.MarkCompleted(ctx, row.ID, reason)
	if err != nil {
		return err
	}
	if applied {
		state := models.ProgressStateTimedOut
		switch reason {
		case models.CompletionReasonMaxAttempts:
			state = models.ProgressStateMaxAttemptsReached
		case models.CompletionReasonSolution:
			state = models.ProgressStateSolutionRevealed
		}
		a.emitQuestionCompleted(ctx, qc, row, state)
	}
	return nil
}

// enforceDeadline is the server-side check behind the client-reported timeout:
// once the question's time budget has elapsed, any subsequent tip or answer
// transitions the row to TimedOut instead of acting on it. A client that never
// reports its timeout can no longer keep the question open.
func (a *App) enforceDeadline(ctx context.Context, qc *questionContext, row *models.TeamProgress) error {
	if row.Completed || qc.question.TimeLimitSeconds <= 0 {
		return nil
	}

	deadline := row.TimeStarted.Add(time.Duration(qc.question.TimeLimitSeconds) * time.Second)
	if !a.clock.Now().After(deadline) {
		return nil
	}

	applied, err := a.repo.MarkCompleted(ctx, row.ID, models.CompletionReasonTimeout)
	if err != nil {
		return err
	}
	if applied {
		log.Info().
			Str("team_id", row.TeamID.String()).
			Str("question_id", row.QuestionID.String()).
			Msg("question timed out server-side")
		a.emitQuestionCompleted(ctx, qc, row, models.ProgressStateTimedOut)
	}
	return ErrAlreadyCompleted
}

func (a *App) emitAnswerCorrect(ctx context.Context, qc *questionContext, row *models.TeamProgress) {
	payload, err := json.Marshal(events.AnswerCorrectPayload{
		EventID:    qc.event.ID,
		TeamID:     row.TeamID,
		QuestionID: row.QuestionID,
		Points:     row.PointsAwarded,
		AnsweredAt: *row.TimeAnswered,
	})
	if err == nil {
		err = a.outbox.InsertAnswerCorrect(ctx, qc.event.ID, payload)
	}
	if err != nil {
		// The mutation has committed; the periodic repush covers the gap.
		log.Error().Err(err).Str("event_id", qc.event.ID.String()).Msg("failed to emit AnswerCorrect event")
	}
}

func (a *App) emitQuestionCompleted(ctx context.Context, qc *questionContext, row *models.TeamProgress, state models.ProgressState) {
	payload, err := json.Marshal(events.QuestionCompletedPayload{
		EventID:    qc.event.ID,
		TeamID:     row.TeamID,
		QuestionID: row.QuestionID,
		State:      string(state),
	})
	if err == nil {
		err = a.outbox.InsertQuestionCompleted(ctx, qc.event.ID, payload)
	}
	if err != nil {
		log.Error().Err(err).Str("event_id", qc.event.ID.String()).Msg("failed to emit QuestionCompleted event")
	}
}

func answersMatch(submitted, solution string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(solution))
}

func isLifecycleErr(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound, ErrEventNotStarted, ErrAlreadyAnswered,
		ErrMaxAttemptsReached, ErrInvalidTipNumber, ErrAlreadyCompleted,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
