package track

import (
	"math"
	"time"
)

// riskOnset is how far below full saturation the score starts when dwell
// first reaches the stationary threshold. A high-confidence detection
// (>= ~0.89) therefore crosses the default 0.8 high-risk gate the moment it
// turns stationary.
const riskOnset = 0.1

// Score maps continuous dwell and detection confidence to a risk value in
// [0,1]. It is zero while dwell is below the stationary threshold; above it
// the score rises monotonically with dwell, saturating toward the
// confidence, and is monotone non-decreasing in confidence.
func Score(dwell time.Duration, confidence float64, stationaryThreshold time.Duration) float64 {
	if stationaryThreshold <= 0 || dwell < stationaryThreshold {
		return 0
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	past := (dwell - stationaryThreshold).Seconds() / stationaryThreshold.Seconds()
	saturation := 1 - riskOnset*math.Exp(-past)

	score := confidence * saturation
	if score > 1 {
		score = 1
	}
	return score
}
