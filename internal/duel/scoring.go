package duel

const (
	basePoints  = 10.0
	bonusPoints = 10.0
)

// Score returns the points earned for a single answer: 0 when wrong,
// otherwise a flat base plus a bonus proportional to the fraction of time
// left when the answer arrived. timeRemaining is clamped to [0, totalTime]
// before the computation, so client-reported values cannot inflate the
// bonus. The result is a real number; rounding is the caller's concern.
func Score(isCorrect bool, timeRemaining, totalTime float64) float64 {
	if !isCorrect || totalTime <= 0 {
		return 0
	}
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	if timeRemaining > totalTime {
		timeRemaining = totalTime
	}
	return basePoints + (timeRemaining/totalTime)*bonusPoints
}
