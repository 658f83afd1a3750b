// Package scoring computes the points awarded for a correctly answered
// question. It is a pure function of difficulty, time limit, elapsed time and
// tips used; the result is stored once and never recomputed.
package scoring

import (
	"math"

	"github.com/pkratz/huntboard/go/internal/models"
)

const (
	basePointsEasy   = 100
	basePointsMedium = 200
	basePointsHard   = 300

	// Answering instantly earns up to 50% on top of the base.
	timeBonusWeight = 0.5

	// Each revealed tip costs 20% of the total.
	tipPenaltyPerTip = 0.2

	// A correct answer is always worth something, unless the solution tip
	// was revealed.
	minPoints = 10
)

// BasePoints returns the base score for a difficulty tier. Unknown tiers fall
// back to easy.
func BasePoints(difficulty models.Difficulty) int {
	switch difficulty {
	case models.DifficultyMedium:
		return basePointsMedium
	case models.DifficultyHard:
		return basePointsHard
	default:
		return basePointsEasy
	}
}

// Score computes the points for a correct answer.
//
// The time bonus decays linearly from timeBonusWeight at elapsed=0 to zero at
// the time limit. Elapsed time past the limit earns no bonus and no penalty.
// usedTip >= 3 means the solution was revealed and the score is zero.
func Score(difficulty models.Difficulty, timeLimitSeconds, elapsedSeconds, usedTip int) int {
	if usedTip >= models.SolutionTipLevel {
		return 0
	}

	if elapsedSeconds < 0 {
		// Clock skew between time_started and time_answered.
		elapsedSeconds = 0
	}

	timeBonusFraction := 0.0
	if timeLimitSeconds > 0 {
		timeBonusFraction = float64(timeLimitSeconds-elapsedSeconds) / float64(timeLimitSeconds)
		if timeBonusFraction < 0 {
			timeBonusFraction = 0
		}
	}

	tipPenaltyFraction := float64(usedTip) * tipPenaltyPerTip

	// Fractions round in the team's favor.
	base := float64(BasePoints(difficulty))
	points := int(math.Ceil(base * (1 + timeBonusFraction*timeBonusWeight) * (1 - tipPenaltyFraction)))

	if points < minPoints {
		points = minPoints
	}
	return points
}
