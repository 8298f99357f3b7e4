package track

import (
	"sync"
	"time"

	"cinemaguard/internal/model"
)

// ZoneState is the per-zone bookkeeping for the current occupancy run.
type ZoneState struct {
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	LastAlertAt time.Time // zero until the first alert
	Box         model.BoundingBox
}

// ZoneTable maps zone keys to their occupancy state. The frame-processing
// step mutates it while the status ticker reads it concurrently, so every
// access goes through the table's single mutex.
type ZoneTable struct {
	mu    sync.Mutex
	zones map[model.ZoneKey]*ZoneState
}

// NewZoneTable returns an empty table.
func NewZoneTable() *ZoneTable {
	return &ZoneTable{zones: make(map[model.ZoneKey]*ZoneState)}
}

// Touch records a detection in the given zone at time now and returns the
// continuous dwell and the time of the last alert (zero if never alerted).
// A gap longer than gapTolerance since the previous detection breaks the
// occupancy run and restarts dwell at zero.
func (t *ZoneTable) Touch(key model.ZoneKey, now time.Time, box model.BoundingBox, gapTolerance time.Duration) (time.Duration, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.zones[key]
	if !ok {
		state = &ZoneState{FirstSeenAt: now}
		t.zones[key] = state
	} else if now.Sub(state.LastSeenAt) > gapTolerance {
		state.FirstSeenAt = now
	}
	state.LastSeenAt = now
	state.Box = box

	dwell := now.Sub(state.FirstSeenAt)
	if dwell < 0 {
		// Clock went backwards; never let negative dwell escape.
		dwell = 0
	}
	return dwell, state.LastAlertAt
}

// ContinuousDwell returns the unbroken occupancy duration of the zone as of
// now, or zero if the zone has no state.
func (t *ZoneTable) ContinuousDwell(key model.ZoneKey, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.zones[key]
	if !ok {
		return 0
	}
	dwell := now.Sub(state.FirstSeenAt)
	if dwell < 0 {
		dwell = 0
	}
	return dwell
}

// MarkAlerted records that an alert was emitted for the zone at time now,
// starting its cooldown window.
func (t *ZoneTable) MarkAlerted(key model.ZoneKey, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.zones[key]; ok {
		state.LastAlertAt = now
	}
}

// SweepStale removes zones whose last detection is older than retention and
// returns how many were removed.
func (t *ZoneTable) SweepStale(now time.Time, retention time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, state := range t.zones {
		if now.Sub(state.LastSeenAt) > retention {
			delete(t.zones, key)
			removed++
		}
	}
	return removed
}

// ActiveZones counts zones with a detection inside the retention window.
func (t *ZoneTable) ActiveZones(now time.Time, retention time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, state := range t.zones {
		if now.Sub(state.LastSeenAt) <= retention {
			count++
		}
	}
	return count
}

// Len returns the number of tracked zones, active or not.
func (t *ZoneTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.zones)
}
