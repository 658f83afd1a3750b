package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkratz/huntboard/go/internal/models"
	"github.com/pkratz/huntboard/go/internal/scoring"
)

func TestScore_MediumWithOneTip(t *testing.T) {
	// base 200, 40s of 60s remaining => bonus fraction 2/3, one tip => 20% off.
	// 200 * (1 + 2/3 * 0.5) * 0.8 = 213.33, rounded up.
	points := scoring.Score(models.DifficultyMedium, 60, 20, 1)
	assert.Equal(t, 214, points)
}

func TestScore_InstantAnswerMaxBonus(t *testing.T) {
	points := scoring.Score(models.DifficultyHard, 120, 0, 0)
	assert.Equal(t, 450, points, "full time bonus is +50% of base")
}

func TestScore_AtTimeLimitNoBonus(t *testing.T) {
	points := scoring.Score(models.DifficultyEasy, 60, 60, 0)
	assert.Equal(t, 100, points)
}

func TestScore_PastTimeLimitNoBonusNoPenalty(t *testing.T) {
	points := scoring.Score(models.DifficultyEasy, 60, 300, 0)
	assert.Equal(t, 100, points, "overtime earns base points, not negative bonus")
}

func TestScore_NegativeElapsedClampedToZero(t *testing.T) {
	points := scoring.Score(models.DifficultyEasy, 60, -5, 0)
	assert.Equal(t, 150, points, "clock skew treated as instant answer")
}

func TestScore_ZeroTimeLimitNoDivideByZero(t *testing.T) {
	points := scoring.Score(models.DifficultyMedium, 0, 10, 0)
	assert.Equal(t, 200, points, "broken time limit means no bonus, not a panic")
}

func TestScore_Floor(t *testing.T) {
	// Two tips and no time left: 100 * 1.0 * 0.6 = 60, still above floor.
	assert.Equal(t, 60, scoring.Score(models.DifficultyEasy, 60, 60, 2))

	// The floor only matters for degenerate inputs, but it must hold for any
	// correct answer with usedTip < 3.
	for tip := 0; tip < 3; tip++ {
		for _, elapsed := range []int{0, 30, 60, 600} {
			p := scoring.Score(models.DifficultyEasy, 60, elapsed, tip)
			assert.GreaterOrEqual(t, p, 10, "tip=%d elapsed=%d", tip, elapsed)
		}
	}
}

func TestScore_SolutionRevealedIsZero(t *testing.T) {
	points := scoring.Score(models.DifficultyHard, 60, 0, 3)
	assert.Equal(t, 0, points, "revealing the solution overrides the floor")
}

func TestBasePoints(t *testing.T) {
	assert.Equal(t, 100, scoring.BasePoints(models.DifficultyEasy))
	assert.Equal(t, 200, scoring.BasePoints(models.DifficultyMedium))
	assert.Equal(t, 300, scoring.BasePoints(models.DifficultyHard))
	assert.Equal(t, 100, scoring.BasePoints(models.Difficulty("weird")))
}
