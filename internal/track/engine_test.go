package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/model"
)

const phoneClassID = 67

// recordingSink captures every emitted event for inspection.
type recordingSink struct {
	events []model.AlertEvent
}

func (s *recordingSink) Emit(event model.AlertEvent) {
	s.events = append(s.events, event)
}

// testClock is a manually advanced clock for deterministic dwell timing.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, cfg Config) (*Engine, *recordingSink, *testClock) {
	t.Helper()

	sink := &recordingSink{}
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	engine := NewEngine(cfg, "hall-1", sink, logger.New(t.TempDir()), clock.Now)

	grid := model.DefaultGridConfig(10, 10, 800, 600)
	require.NoError(t, engine.SetGrid(grid))

	return engine, sink, clock
}

func defaultTestConfig() Config {
	return Config{
		TargetClassID:       phoneClassID,
		MinConfidence:       0.4,
		StationaryThreshold: 3 * time.Second,
		HighRiskThreshold:   0.8,
		AlertCooldown:       5 * time.Second,
		GapTolerance:        2 * time.Second,
		StaleRetention:      30 * time.Second,
	}
}

func phoneAt(cx, cy int, confidence float64) model.Detection {
	return model.Detection{
		Box:        model.BoundingBox{X1: cx - 20, Y1: cy - 20, X2: cx + 20, Y2: cy + 20},
		Confidence: confidence,
		ClassID:    phoneClassID,
	}
}

func TestEngine_FiltersClassAndConfidence(t *testing.T) {
	engine, sink, _ := newTestEngine(t, defaultTestConfig())

	person := phoneAt(400, 300, 0.95)
	person.ClassID = 1
	faint := phoneAt(200, 200, 0.39)

	enriched := engine.ProcessFrame([]model.Detection{person, faint}, 800, 600)

	assert.Empty(t, enriched)
	assert.Zero(t, engine.Table().Len(), "filtered detections must not create zone state")
	assert.Empty(t, sink.events)
}

func TestEngine_SkipsDetectionsOutsideGrid(t *testing.T) {
	cfg := defaultTestConfig()
	engine, _, _ := newTestEngine(t, cfg)

	// Shrink the grid to the canvas center, then detect near the edge.
	require.NoError(t, engine.SetGrid(model.GridConfig{
		Corners: []model.Point{
			{X: 300, Y: 200}, {X: 500, Y: 200}, {X: 500, Y: 400}, {X: 300, Y: 400},
		},
		Rows: 5, Cols: 5, CanvasWidth: 800, CanvasHeight: 600,
	}))

	enriched := engine.ProcessFrame([]model.Detection{phoneAt(50, 50, 0.9)}, 800, 600)
	assert.Empty(t, enriched)
	assert.Zero(t, engine.Table().Len())

	enriched = engine.ProcessFrame([]model.Detection{phoneAt(400, 300, 0.9)}, 800, 600)
	require.Len(t, enriched, 1)
	assert.Equal(t, "2,2", enriched[0].Zone)
}

func TestEngine_EnrichesWithZoneDwellAndRisk(t *testing.T) {
	engine, _, clock := newTestEngine(t, defaultTestConfig())

	enriched := engine.ProcessFrame([]model.Detection{phoneAt(400, 300, 0.9)}, 800, 600)
	require.Len(t, enriched, 1)
	assert.Equal(t, "5,5", enriched[0].Zone)
	assert.Zero(t, enriched[0].Duration)
	assert.Zero(t, enriched[0].RiskScore)

	clock.Advance(time.Second)
	enriched = engine.ProcessFrame([]model.Detection{phoneAt(400, 300, 0.9)}, 800, 600)
	require.Len(t, enriched, 1)
	assert.InDelta(t, 1.0, enriched[0].Duration, 1e-9)
	assert.Zero(t, enriched[0].RiskScore, "still below the stationary threshold")
}

func TestEngine_AlertFiresAtThresholdAndRespectsCooldown(t *testing.T) {
	engine, sink, clock := newTestEngine(t, defaultTestConfig())
	det := phoneAt(400, 300, 0.9)

	// One detection per second. Threshold 3s, cooldown 5s.
	for i := 0; i <= 8; i++ {
		if i > 0 {
			clock.Advance(time.Second)
		}
		engine.ProcessFrame([]model.Detection{det}, 800, 600)
	}

	// First alert the moment dwell hits 3s, second once the 5s cooldown
	// expires at dwell 8s. Nothing in between.
	require.Len(t, sink.events, 2)

	first, second := sink.events[0], sink.events[1]
	assert.Equal(t, "hall-1", first.Hall)
	assert.Equal(t, "5,5", first.Zone)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.InDelta(t, 0.81, first.RiskScore, 1e-9)
	assert.Equal(t, 5*time.Second, second.Timestamp.Sub(first.Timestamp))
}

func TestEngine_GapResetsDwellAndRisk(t *testing.T) {
	engine, sink, clock := newTestEngine(t, defaultTestConfig())
	det := phoneAt(400, 300, 0.9)

	engine.ProcessFrame([]model.Detection{det}, 800, 600)

	// Silence well past the 2s gap tolerance: the occupancy run breaks.
	clock.Advance(10 * time.Second)
	enriched := engine.ProcessFrame([]model.Detection{det}, 800, 600)
	require.Len(t, enriched, 1)
	assert.Zero(t, enriched[0].Duration)
	assert.Zero(t, enriched[0].RiskScore)
	assert.Empty(t, sink.events)
}

func TestEngine_SeparateZonesTrackIndependently(t *testing.T) {
	engine, sink, clock := newTestEngine(t, defaultTestConfig())

	left := phoneAt(100, 300, 0.9)  // zone "5,1"
	right := phoneAt(700, 300, 0.9) // zone "5,8"

	for i := 0; i <= 3; i++ {
		if i > 0 {
			clock.Advance(time.Second)
		}
		engine.ProcessFrame([]model.Detection{left, right}, 800, 600)
	}

	// Both zones cross the threshold on the same frame and alert
	// independently.
	require.Len(t, sink.events, 2)
	zones := []string{sink.events[0].Zone, sink.events[1].Zone}
	assert.ElementsMatch(t, []string{"5,1", "5,8"}, zones)
	assert.Equal(t, 2, engine.Table().Len())
}

func TestEngine_CooldownSurvivesSinkFailure(t *testing.T) {
	// The sink is fire-and-forget; whatever it does with the event, the
	// zone's cooldown must already be running so the next frame cannot
	// re-fire immediately.
	engine, sink, clock := newTestEngine(t, defaultTestConfig())
	det := phoneAt(400, 300, 0.9)

	for i := 0; i <= 3; i++ {
		if i > 0 {
			clock.Advance(time.Second)
		}
		engine.ProcessFrame([]model.Detection{det}, 800, 600)
	}
	require.Len(t, sink.events, 1)

	clock.Advance(time.Second)
	engine.ProcessFrame([]model.Detection{det}, 800, 600)
	assert.Len(t, sink.events, 1, "cooldown must gate the next frame")
}

func TestEngine_SetGridInvalidKeepsPrevious(t *testing.T) {
	engine, _, _ := newTestEngine(t, defaultTestConfig())

	before := engine.GridConfig()
	require.NotNil(t, before)

	err := engine.SetGrid(model.GridConfig{Rows: 0, Cols: 10, CanvasWidth: 800, CanvasHeight: 600})
	require.Error(t, err)

	after := engine.GridConfig()
	require.NotNil(t, after)
	assert.Equal(t, *before, *after)

	// The old grid still maps detections.
	enriched := engine.ProcessFrame([]model.Detection{phoneAt(400, 300, 0.9)}, 800, 600)
	assert.Len(t, enriched, 1)
}

func TestEngine_StatusSummary(t *testing.T) {
	engine, _, clock := newTestEngine(t, defaultTestConfig())

	engine.ProcessFrame([]model.Detection{
		phoneAt(100, 100, 0.9),
		phoneAt(700, 500, 0.9),
	}, 800, 600)

	status := engine.Status()
	assert.Equal(t, 2, status.Detections)
	assert.Equal(t, 2, status.ActiveZones)

	// After the retention window both zones are swept.
	clock.Advance(40 * time.Second)
	engine.ProcessFrame(nil, 800, 600)

	status = engine.Status()
	assert.Zero(t, status.Detections)
	assert.Zero(t, status.ActiveZones)
	assert.Zero(t, engine.Table().Len())
}
