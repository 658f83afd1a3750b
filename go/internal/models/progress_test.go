package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestAttemptsUsed(t *testing.T) {
	p := TeamProgress{}
	assert.Equal(t, 0, p.AttemptsUsed())

	p.Attempt1 = strp("first")
	assert.Equal(t, 1, p.AttemptsUsed())

	p.Attempt2 = strp("second")
	p.Attempt3 = strp("third")
	assert.Equal(t, 3, p.AttemptsUsed())
}

func TestStateDerivation(t *testing.T) {
	tests := []struct {
		name string
		row  TeamProgress
		want ProgressState
	}{
		{"fresh row", TeamProgress{}, ProgressStateInProgress},
		{"solved", TeamProgress{Completed: true, Correct: true}, ProgressStateSolved},
		{"solution revealed", TeamProgress{Completed: true, UsedTip: 3}, ProgressStateSolutionRevealed},
		{
			"attempts exhausted",
			TeamProgress{Completed: true, Attempt1: strp("a"), Attempt2: strp("b"), Attempt3: strp("c")},
			ProgressStateMaxAttemptsReached,
		},
		{"timed out", TeamProgress{Completed: true}, ProgressStateTimedOut},
		{
			"solved wins over revealed tip",
			TeamProgress{Completed: true, Correct: true, UsedTip: 3},
			ProgressStateSolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.row.State())
		})
	}
}
