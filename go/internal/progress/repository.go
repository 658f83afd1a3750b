package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/pkratz/huntboard/go/internal/models"
	"github.com/pkratz/huntboard/go/internal/sqlutil"
)

const progressColumns = `id, team_id, question_id, attempt_1, attempt_2, attempt_3,
	used_tip, correct, completed, time_started, time_answered, points_awarded, metadata`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureRow creates the progress row for a (team, question) pair if it does
// not exist yet, and returns it either way. Two near-simultaneous callers may
// race to insert; the loser's insert hits the uniqueness constraint, affects
// zero rows, and re-reads the winner's row. Callers never see a duplicate-key
// failure.
func (r *Repository) EnsureRow(ctx context.Context, teamID, questionID uuid.UUID, startedAt time.Time) (*models.TeamProgress, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO team_progress (id, team_id, question_id, time_started)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (team_id, question_id) DO NOTHING`,
		uuid.New(), teamID, questionID, startedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert progress row: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected count: %w", err)
	}

	row, err := r.GetByTeamQuestion(ctx, teamID, questionID)
	if err != nil {
		return nil, false, err
	}
	return row, inserted > 0, nil
}

func (r *Repository) GetByTeamQuestion(ctx context.Context, teamID, questionID uuid.UUID) (*models.TeamProgress, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+progressColumns+`
		FROM team_progress
		WHERE team_id = $1 AND question_id = $2`,
		teamID, questionID)

	p, err := scanProgress(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress row: %w", err)
	}
	return p, nil
}

// RecordTip raises used_tip to tipNumber. The used_tip < tipNumber guard makes
// the mutation monotonic at the store level; repeated or lower requests affect
// zero rows. Raising to the solution tip also completes the row in the same
// statement. Returns whether the row changed.
func (r *Repository) RecordTip(ctx context.Context, id uuid.UUID, tipNumber int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE team_progress
		SET used_tip = $2,
		    completed = completed OR $3
		WHERE id = $1 AND NOT completed AND used_tip < $2`,
		id, tipNumber, tipNumber >= models.SolutionTipLevel)
	if err != nil {
		return false, fmt.Errorf("failed to record tip: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return affected > 0, nil
}

// RecordAnswerRequest carries one answer submission into the store. Correct
// and Points are decided by the app layer before the write.
type RecordAnswerRequest struct {
	TeamID     uuid.UUID
	QuestionID uuid.UUID
	Text       string
	Correct    bool
	Points     int
	AnsweredAt time.Time
}

// RecordAnswer appends the submitted text to the first empty attempt slot and
// applies the outcome, all inside a row-locking transaction so two interleaved
// calls cannot claim the same slot. Returns the updated row.
func (r *Repository) RecordAnswer(ctx context.Context, req RecordAnswerRequest) (*models.TeamProgress, error) {
	var updated *models.TeamProgress

	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT `+progressColumns+`
			FROM team_progress
			WHERE team_id = $1 AND question_id = $2
			FOR UPDATE`,
			req.TeamID, req.QuestionID)

		p, err := scanProgress(row)
		if err != nil {
			return fmt.Errorf("failed to lock progress row: %w", err)
		}

		// Re-check terminal state under the lock; a concurrent tip 3 or
		// answer may have landed since the caller's read.
		if p.Correct {
			return ErrAlreadyAnswered
		}
		slot := p.AttemptsUsed() + 1
		if slot > models.MaxAttempts {
			return ErrMaxAttemptsReached
		}
		if p.Completed {
			return ErrAlreadyCompleted
		}

		completed := req.Correct || slot == models.MaxAttempts

		var answeredAt *time.Time
		points := 0
		if req.Correct {
			answeredAt = &req.AnsweredAt
			points = req.Points
		}

		out := tx.QueryRowContext(ctx, fmt.Sprintf(`
			UPDATE team_progress
			SET attempt_%d = $2,
			    correct = $3,
			    completed = $4,
			    time_answered = COALESCE($5, time_answered),
			    points_awarded = $6
			WHERE id = $1
			RETURNING `+progressColumns, slot),
			p.ID, req.Text, req.Correct, completed, sqlutil.ToSqlTime(answeredAt), points)

		updated, err = scanProgress(out)
		if err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkCompleted transitions a row to terminal without touching score fields.
// The NOT completed guard makes it idempotent: a second call affects zero rows.
// The reason lands in the diagnostic metadata column, the one field terminal
// rows may still change.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, reason models.CompletionReason) (bool, error) {
	meta, err := json.Marshal(map[string]string{"completion_reason": string(reason)})
	if err != nil {
		return false, fmt.Errorf("failed to marshal completion metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE team_progress
		SET completed = TRUE,
		    metadata = COALESCE(metadata, '{}'::jsonb) || $2
		WHERE id = $1 AND NOT completed`,
		id, pqtype.NullRawMessage{RawMessage: meta, Valid: true})
	if err != nil {
		return false, fmt.Errorf("failed to mark progress completed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return affected > 0, nil
}

func scanProgress(row *sql.Row) (*models.TeamProgress, error) {
	var p models.TeamProgress
	var attempt1, attempt2, attempt3 sql.NullString
	var timeAnswered sql.NullTime
	var metadata pqtype.NullRawMessage

	err := row.Scan(
		&p.ID, &p.TeamID, &p.QuestionID,
		&attempt1, &attempt2, &attempt3,
		&p.UsedTip, &p.Correct, &p.Completed,
		&p.TimeStarted, &timeAnswered, &p.PointsAwarded,
		&metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Attempt1 = sqlutil.FromSqlStringPtr(attempt1)
	p.Attempt2 = sqlutil.FromSqlStringPtr(attempt2)
	p.Attempt3 = sqlutil.FromSqlStringPtr(attempt3)
	p.TimeAnswered = sqlutil.FromSqlTimePtr(timeAnswered)
	if metadata.Valid {
		p.Metadata = metadata.RawMessage
	}
	return &p, nil
}
