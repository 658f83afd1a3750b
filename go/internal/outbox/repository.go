// Package outbox persists domain events next to the state they describe and
// relays them to NATS JetStream. Writing the event row in the same database as
// the progress mutation gives at-least-once delivery across process restarts.
package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkratz/huntboard/go/internal/events"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertAnswerCorrect(ctx context.Context, eventID uuid.UUID, payload []byte) error {
	if err := r.insert(ctx, eventID, events.TypeAnswerCorrect, payload); err != nil {
		return fmt.Errorf("failed to insert AnswerCorrect outbox event: %w", err)
	}
	return nil
}

func (r *Repository) InsertQuestionCompleted(ctx context.Context, eventID uuid.UUID, payload []byte) error {
	if err := r.insert(ctx, eventID, events.TypeQuestionCompleted, payload); err != nil {
		return fmt.Errorf("failed to insert QuestionCompleted outbox event: %w", err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, eventID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scoreboard_outbox (id, event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), eventID, eventType, payload)
	return err
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, event_type, payload, created_at
		FROM scoreboard_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return out, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scoreboard_outbox
		SET sent_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}
