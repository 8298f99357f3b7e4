package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemaguard/internal/model"
)

var testBox = model.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 50}

func TestZoneTable_DwellAccumulates(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 3, Col: 4}
	start := time.Unix(1000, 0)
	tolerance := 2 * time.Second

	dwell, lastAlert := table.Touch(key, start, testBox, tolerance)
	assert.Zero(t, dwell)
	assert.True(t, lastAlert.IsZero())

	dwell, _ = table.Touch(key, start.Add(time.Second), testBox, tolerance)
	assert.Equal(t, time.Second, dwell)

	dwell, _ = table.Touch(key, start.Add(3*time.Second), testBox, tolerance)
	assert.Equal(t, 3*time.Second, dwell)
}

func TestZoneTable_TouchSameInstantIsIdempotent(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 0, Col: 0}
	now := time.Unix(1000, 0)

	first, _ := table.Touch(key, now, testBox, 2*time.Second)
	second, _ := table.Touch(key, now, testBox, 2*time.Second)

	assert.Equal(t, first, second)
	assert.Zero(t, second)
	assert.Equal(t, 1, table.Len())
}

func TestZoneTable_GapResetsDwell(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 1, Col: 1}
	start := time.Unix(1000, 0)
	tolerance := 2 * time.Second

	table.Touch(key, start, testBox, tolerance)

	// Ten seconds of silence is well past the 2s tolerance: the run breaks
	// and dwell starts over.
	dwell, _ := table.Touch(key, start.Add(10*time.Second), testBox, tolerance)
	assert.Zero(t, dwell)

	dwell, _ = table.Touch(key, start.Add(11*time.Second), testBox, tolerance)
	assert.Equal(t, time.Second, dwell)
}

func TestZoneTable_GapAtToleranceDoesNotReset(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 1, Col: 1}
	start := time.Unix(1000, 0)
	tolerance := 2 * time.Second

	table.Touch(key, start, testBox, tolerance)

	dwell, _ := table.Touch(key, start.Add(tolerance), testBox, tolerance)
	assert.Equal(t, tolerance, dwell)
}

func TestZoneTable_ClockGoingBackwards(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 2, Col: 2}
	start := time.Unix(1000, 0)

	table.Touch(key, start, testBox, 2*time.Second)

	dwell, _ := table.Touch(key, start.Add(-5*time.Second), testBox, 2*time.Second)
	assert.Zero(t, dwell)

	assert.Zero(t, table.ContinuousDwell(key, start.Add(-time.Hour)))
}

func TestZoneTable_MarkAlerted(t *testing.T) {
	table := NewZoneTable()
	key := model.ZoneKey{Row: 5, Col: 5}
	now := time.Unix(1000, 0)

	table.Touch(key, now, testBox, 2*time.Second)
	table.MarkAlerted(key, now)

	_, lastAlert := table.Touch(key, now.Add(time.Second), testBox, 2*time.Second)
	assert.Equal(t, now, lastAlert)

	// Marking an untracked zone is a no-op.
	table.MarkAlerted(model.ZoneKey{Row: 9, Col: 9}, now)
	assert.Equal(t, 1, table.Len())
}

func TestZoneTable_SweepStale(t *testing.T) {
	table := NewZoneTable()
	start := time.Unix(1000, 0)
	retention := 30 * time.Second

	old := model.ZoneKey{Row: 0, Col: 0}
	fresh := model.ZoneKey{Row: 0, Col: 1}

	table.Touch(old, start, testBox, 2*time.Second)
	table.Touch(fresh, start.Add(15*time.Second), testBox, 2*time.Second)
	require.Equal(t, 2, table.Len())

	now := start.Add(40 * time.Second)
	assert.Equal(t, 1, table.SweepStale(now, retention))
	assert.Equal(t, 1, table.Len())

	// Sweeping again removes nothing.
	assert.Zero(t, table.SweepStale(now, retention))
	assert.Equal(t, 1, table.ActiveZones(now, retention))
}

func TestZoneTable_ActiveZonesCountsOnlyRecent(t *testing.T) {
	table := NewZoneTable()
	start := time.Unix(1000, 0)
	retention := 30 * time.Second

	table.Touch(model.ZoneKey{Row: 0, Col: 0}, start, testBox, 2*time.Second)
	table.Touch(model.ZoneKey{Row: 1, Col: 0}, start.Add(20*time.Second), testBox, 2*time.Second)

	assert.Equal(t, 2, table.ActiveZones(start.Add(25*time.Second), retention))
	assert.Equal(t, 1, table.ActiveZones(start.Add(45*time.Second), retention))
	assert.Zero(t, table.ActiveZones(start.Add(2*time.Minute), retention))
}
