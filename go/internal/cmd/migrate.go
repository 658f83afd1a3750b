package main

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// The events, teams and questions tables are owned by the CRUD service; they
// are created here too so a local instance works standalone. team_progress
// and scoreboard_outbox belong to this service.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		started    BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id       UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id                 UUID PRIMARY KEY,
		event_id           UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		difficulty         TEXT NOT NULL,
		solution           TEXT NOT NULL,
		time_limit_seconds INTEGER NOT NULL,
		tip_1              TEXT NOT NULL DEFAULT '',
		tip_2              TEXT NOT NULL DEFAULT '',
		tip_3              TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS team_progress (
		id             UUID PRIMARY KEY,
		team_id        UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		question_id    UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		attempt_1      TEXT,
		attempt_2      TEXT,
		attempt_3      TEXT,
		used_tip       INTEGER NOT NULL DEFAULT 0,
		correct        BOOLEAN NOT NULL DEFAULT FALSE,
		completed      BOOLEAN NOT NULL DEFAULT FALSE,
		time_started   TIMESTAMPTZ NOT NULL,
		time_answered  TIMESTAMPTZ,
		points_awarded INTEGER NOT NULL DEFAULT 0,
		metadata       JSONB,
		UNIQUE (team_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scoreboard_outbox (
		id         UUID PRIMARY KEY,
		event_id   UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scoreboard_outbox_unsent
		ON scoreboard_outbox (created_at) WHERE sent_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_team_progress_team
		ON team_progress (team_id)`,
}

func runMigrations(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	log.Info().Int("statements", len(migrations)).Msg("migrations applied")
	return nil
}
