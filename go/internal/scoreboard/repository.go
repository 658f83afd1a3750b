// Package scoreboard aggregates team_progress rows into the ranked per-event
// scoreboard. Reads are not transactionally isolated from concurrent answer
// writes; a snapshot may trail a write by one push and is corrected by the
// next.
package scoreboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Row is one team's raw aggregate, before ranking.
type Row struct {
	TeamID             uuid.UUID
	TeamName           string
	TotalPoints        int
	QuestionsSolved    int
	CompletedQuestions int
	LastAnswerTime     *time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FetchEventRows aggregates every team of the event. The left join keeps
// teams with no progress rows on the board with zeroes.
func (r *Repository) FetchEventRows(ctx context.Context, eventID uuid.UUID) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			t.id,
			t.name,
			COALESCE(SUM(p.points_awarded), 0),
			COUNT(*) FILTER (WHERE p.correct),
			COUNT(*) FILTER (WHERE p.completed),
			MAX(p.time_answered)
		FROM teams t
		LEFT JOIN team_progress p ON p.team_id = t.id
		WHERE t.event_id = $1
		GROUP BY t.id, t.name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scoreboard rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var lastAnswer sql.NullTime
		if err := rows.Scan(&row.TeamID, &row.TeamName, &row.TotalPoints,
			&row.QuestionsSolved, &row.CompletedQuestions, &lastAnswer); err != nil {
			return nil, fmt.Errorf("failed to scan scoreboard row: %w", err)
		}
		if lastAnswer.Valid {
			row.LastAnswerTime = &lastAnswer.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scoreboard rows: %w", err)
	}
	return out, nil
}
