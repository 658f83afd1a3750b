package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkratz/huntboard/go/internal/dbconfig"
)

// Fixture mirrors the JSON snapshot of one event with its teams and questions.
type Fixture struct {
	Event struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Started bool   `json:"started"`
	} `json:"event"`
	Teams []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"teams"`
	Questions []struct {
		ID               string `json:"id"`
		Difficulty       string `json:"difficulty"`
		Solution         string `json:"solution"`
		TimeLimitSeconds int    `json:"time_limit_seconds"`
		Tip1             string `json:"tip_1"`
		Tip2             string `json:"tip_2"`
		Tip3             string `json:"tip_3"`
	} `json:"questions"`
}

func main() {
	path := "go/internal/assets/event.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	ctx := context.Background()

	eventID := orNewUUID(fixture.Event.ID)
	_, err = pool.Exec(ctx, `
        INSERT INTO events (id, name, started, started_at)
        VALUES ($1, $2, $3, CASE WHEN $3 THEN NOW() ELSE NULL END)
        ON CONFLICT (id) DO NOTHING
    `, eventID, fixture.Event.Name, fixture.Event.Started)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error inserting event: %v\n", err)
		os.Exit(1)
	}

	var inserted, skipped, errs int

	for _, t := range fixture.Teams {
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO teams (id, event_id, name)
            VALUES ($1, $2, $3)
            ON CONFLICT (id) DO NOTHING
        `, orNewUUID(t.ID), eventID, t.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting team %s: %v\n", t.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	for _, q := range fixture.Questions {
		cmdTag, err := pool.Exec(ctx, `
            INSERT INTO questions (
              id, event_id, difficulty, solution, time_limit_seconds,
              tip_1, tip_2, tip_3
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            ON CONFLICT (id) DO NOTHING
        `, orNewUUID(q.ID), eventID, q.Difficulty, q.Solution, q.TimeLimitSeconds,
			q.Tip1, q.Tip2, q.Tip3)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting question %s: %v\n", q.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	fmt.Printf(
		"Event seed complete: event %s, %d inserted, %d skipped, %d errors\n",
		eventID, inserted, skipped, errs,
	)
}

func orNewUUID(s string) string {
	if s == "" {
		return uuid.New().String()
	}
	return s
}
