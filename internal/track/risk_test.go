package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_ZeroBelowThreshold(t *testing.T) {
	threshold := 30 * time.Second

	assert.Zero(t, Score(0, 0.99, threshold))
	assert.Zero(t, Score(29*time.Second, 0.99, threshold))
	assert.Zero(t, Score(29999*time.Millisecond, 0.99, threshold))
}

func TestScore_AtThreshold(t *testing.T) {
	threshold := 30 * time.Second

	// The moment dwell reaches the threshold a confident detection must
	// already clear the default 0.8 high-risk gate.
	score := Score(threshold, 0.9, threshold)
	assert.InDelta(t, 0.81, score, 1e-9)
	assert.GreaterOrEqual(t, score, 0.8)
}

func TestScore_MonotoneInDwell(t *testing.T) {
	threshold := 30 * time.Second

	prev := Score(threshold, 0.7, threshold)
	for d := threshold + time.Second; d <= 5*time.Minute; d += 10 * time.Second {
		score := Score(d, 0.7, threshold)
		assert.GreaterOrEqual(t, score, prev, "dwell %s", d)
		prev = score
	}
}

func TestScore_MonotoneInConfidence(t *testing.T) {
	threshold := 30 * time.Second
	dwell := 45 * time.Second

	prev := 0.0
	for conf := 0.0; conf <= 1.0; conf += 0.05 {
		score := Score(dwell, conf, threshold)
		assert.GreaterOrEqual(t, score, prev, "confidence %.2f", conf)
		prev = score
	}
}

func TestScore_Bounded(t *testing.T) {
	threshold := 30 * time.Second

	assert.LessOrEqual(t, Score(24*time.Hour, 1.0, threshold), 1.0)
	assert.GreaterOrEqual(t, Score(24*time.Hour, 1.0, threshold), 0.0)

	// Out-of-range confidence is clamped, not propagated.
	assert.LessOrEqual(t, Score(time.Minute, 1.5, threshold), 1.0)
	assert.Zero(t, Score(time.Minute, -0.3, threshold))
}

func TestScore_SaturatesTowardConfidence(t *testing.T) {
	threshold := 30 * time.Second

	score := Score(time.Hour, 0.7, threshold)
	assert.InDelta(t, 0.7, score, 1e-6)
	assert.LessOrEqual(t, score, 0.7)
}

func TestScore_DisabledThreshold(t *testing.T) {
	assert.Zero(t, Score(time.Hour, 1.0, 0))
	assert.Zero(t, Score(time.Hour, 1.0, -time.Second))
}
