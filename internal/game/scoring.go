package game

import (
	"math"
	"time"
)

// maxPoints is the award for answering instantly.
const maxPoints = 1000

// Award computes the point value of a correct answer as a linear decay of
// response time: full points at zero elapsed, nothing once
// timeLimit * factor has passed. The factor must be greater than 1; it is
// config-driven because deployments disagree on how harsh the decay
// should be.
func Award(timeTaken, timeLimit time.Duration, factor float64) int {
	if timeLimit <= 0 {
		return 0
	}
	window := time.Duration(float64(timeLimit) * factor)
	if timeTaken <= 0 {
		return maxPoints
	}
	if timeTaken >= window {
		return 0
	}
	return int(math.Round(maxPoints * (1 - float64(timeTaken)/float64(window))))
}
