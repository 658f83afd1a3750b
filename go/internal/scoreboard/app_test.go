package scoreboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(minute int) *time.Time {
	t := time.Date(2026, 5, 1, 12, minute, 0, 0, time.UTC)
	return &t
}

func TestRankOrdersByPointsThenSolvedThenTime(t *testing.T) {
	alpha := Row{TeamID: uuid.New(), TeamName: "Alpha", TotalPoints: 500, QuestionsSolved: 3, LastAnswerTime: ts(40)}
	bravo := Row{TeamID: uuid.New(), TeamName: "Bravo", TotalPoints: 500, QuestionsSolved: 3, LastAnswerTime: ts(35)}
	carol := Row{TeamID: uuid.New(), TeamName: "Carol", TotalPoints: 500, QuestionsSolved: 2, LastAnswerTime: ts(10)}
	delta := Row{TeamID: uuid.New(), TeamName: "Delta", TotalPoints: 620, QuestionsSolved: 2, LastAnswerTime: ts(50)}

	entries := Rank([]Row{alpha, bravo, carol, delta})

	require.Len(t, entries, 4)
	assert.Equal(t, "Delta", entries[0].TeamName, "highest points wins regardless of solved count")
	assert.Equal(t, "Bravo", entries[1].TeamName, "earlier last answer breaks the full tie")
	assert.Equal(t, "Alpha", entries[2].TeamName)
	assert.Equal(t, "Carol", entries[3].TeamName, "fewer solved loses the points tie")

	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankTeamsWithoutAnswersSortLast(t *testing.T) {
	idle := Row{TeamID: uuid.New(), TeamName: "Idle"}
	zed := Row{TeamID: uuid.New(), TeamName: "Zed"}
	active := Row{TeamID: uuid.New(), TeamName: "Active", LastAnswerTime: ts(5)}

	entries := Rank([]Row{zed, idle, active})

	require.Len(t, entries, 3)
	assert.Equal(t, "Active", entries[0].TeamName)
	assert.Equal(t, "Idle", entries[1].TeamName, "no-answer teams fall back to name order")
	assert.Equal(t, "Zed", entries[2].TeamName)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

type fakeRows struct {
	rows []Row
}

func (f *fakeRows) FetchEventRows(context.Context, uuid.UUID) ([]Row, error) {
	return f.rows, nil
}

func TestGetScoreboardSnapshot(t *testing.T) {
	eventID := uuid.New()
	repo := &fakeRows{rows: []Row{
		{TeamID: uuid.New(), TeamName: "Ducks", TotalPoints: 214, QuestionsSolved: 1, CompletedQuestions: 2, LastAnswerTime: ts(20)},
		{TeamID: uuid.New(), TeamName: "Geese", TotalPoints: 450, QuestionsSolved: 1, CompletedQuestions: 1, LastAnswerTime: ts(15)},
	}}

	now := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	board, err := NewApp(repo, clock).GetScoreboard(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, eventID, board.EventID)
	assert.Equal(t, now, board.ComputedAt, "snapshot timestamp comes from the injected clock")
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "Geese", board.Entries[0].TeamName)
	assert.Equal(t, 2, board.Entries[1].CompletedQuestions)
}
