package emoji

const (
	MinDifficulty = 1
	MaxDifficulty = 3

	// scoringWindowMs is the span over which the time bonus decays to zero.
	scoringWindowMs = 60000
)

// Points returns the score for a correct answer given elapsedMs after the
// round started, for a phrase of the given difficulty.
func Points(elapsedMs int64, difficulty int) int {
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	base := difficulty * 100

	bonus := int((scoringWindowMs-elapsedMs)/1000) * 10
	if bonus < 0 {
		bonus = 0
	}

	return base + bonus
}
