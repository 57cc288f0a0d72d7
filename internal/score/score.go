// Package score turns quiz outcomes into experience points.
package score

import (
	"time"

	"github.com/conorfennell/mythos/internal/domain"
)

// XPRewards is the experience awarded per correct answer.
var XPRewards = map[domain.Difficulty]int{
	domain.Easy:   10,
	domain.Medium: 20,
	domain.Hard:   30,
}

// TimeLimits is the per-question time budget in seconds. Enforcing it is up
// to the presentation layer.
var TimeLimits = map[domain.Difficulty]int{
	domain.Easy:   30,
	domain.Medium: 20,
	domain.Hard:   15,
}

// Bonus rates in percent of the base reward.
const (
	perfectBonusPercent = 25
	timerBonusPercent   = 15
)

// TimeLimit returns the per-question budget for d as a duration.
func TimeLimit(d domain.Difficulty) time.Duration {
	return time.Duration(TimeLimits[d]) * time.Second
}

// CalculateQuizXP returns the experience earned for correct answers out of
// total. Each bonus is floored on its own before being added to the base.
func CalculateQuizXP(correct, total int, difficulty domain.Difficulty, timerEnabled bool) int {
	if correct <= 0 {
		return 0
	}
	base := correct * XPRewards[difficulty]

	perfect := 0
	if correct == total && total > 0 {
		perfect = base * perfectBonusPercent / 100
	}
	timer := 0
	if timerEnabled {
		timer = base * timerBonusPercent / 100
	}
	return base + perfect + timer
}
