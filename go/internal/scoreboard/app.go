package scoreboard

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pkratz/huntboard/go/internal/models"
)

// ScoreboardRepository defines what the app layer needs from the aggregation
// query.
type ScoreboardRepository interface {
	FetchEventRows(ctx context.Context, eventID uuid.UUID) ([]Row, error)
}

// App produces ranked scoreboard snapshots.
type App struct {
	repo  ScoreboardRepository
	clock clockwork.Clock
}

func NewApp(repo ScoreboardRepository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock}
}

// GetScoreboard computes the full ranked snapshot for one event.
func (a *App) GetScoreboard(ctx context.Context, eventID uuid.UUID) (*models.Scoreboard, error) {
	rows, err := a.repo.FetchEventRows(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries := Rank(rows)
	return &models.Scoreboard{
		EventID:    eventID,
		Entries:    entries,
		ComputedAt: a.clock.Now(),
	}, nil
}

// Rank orders raw aggregates into scoreboard entries: total points descending,
// then questions solved descending, then last answer time ascending so that on
// a full tie the earlier finisher ranks higher. Teams that never answered sort
// after teams that did.
func Rank(rows []Row) []models.ScoreboardEntry {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.QuestionsSolved != b.QuestionsSolved {
			return a.QuestionsSolved > b.QuestionsSolved
		}
		switch {
		case a.LastAnswerTime == nil && b.LastAnswerTime == nil:
			// Full tie with no answers; keep a stable name order.
			return a.TeamName < b.TeamName
		case a.LastAnswerTime == nil:
			return false
		case b.LastAnswerTime == nil:
			return true
		default:
			return a.LastAnswerTime.Before(*b.LastAnswerTime)
		}
	})

	entries := make([]models.ScoreboardEntry, len(sorted))
	for i, row := range sorted {
		entries[i] = models.ScoreboardEntry{
			Rank:               i + 1,
			TeamID:             row.TeamID,
			TeamName:           row.TeamName,
			TotalPoints:        row.TotalPoints,
			QuestionsSolved:    row.QuestionsSolved,
			CompletedQuestions: row.CompletedQuestions,
			LastAnswerTime:     row.LastAnswerTime,
		}
	}
	return entries
}
