// Package catalog reads the event, team and question records owned by the
// external CRUD layer. The progress service never writes these tables; it only
// consumes identifiers, difficulty tiers, time limits, tips and solutions.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkratz/huntboard/go/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var q models.Question
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, difficulty, solution, time_limit_seconds, tip_1, tip_2, tip_3
		FROM questions
		WHERE id = $1`, id,
	).Scan(&q.ID, &q.EventID, &q.Difficulty, &q.Solution, &q.TimeLimitSeconds, &q.Tip1, &q.Tip2, &q.Tip3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var t models.Team
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, name
		FROM teams
		WHERE id = $1`, id,
	).Scan(&t.ID, &t.EventID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	var startedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, started, started_at
		FROM events
		WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Started, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if startedAt.Valid {
		e.StartedAt = &startedAt.Time
	}
	return &e, nil
}
