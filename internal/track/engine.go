package track

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/model"
)

// AlertSink receives alert events from the engine. Implementations must not
// block: emission is fire-and-forget from the engine's point of view and a
// slow sink may drop events, never stall frame processing.
type AlertSink interface {
	Emit(event model.AlertEvent)
}

// Config holds the externally supplied tracking knobs.
type Config struct {
	TargetClassID       int
	MinConfidence       float64
	StationaryThreshold time.Duration
	HighRiskThreshold   float64
	AlertCooldown       time.Duration
	GapTolerance        time.Duration
	StaleRetention      time.Duration
}

// Engine orchestrates per-frame processing: it filters raw detections, maps
// them to zones, updates the zone table, scores risk and gates alerts.
// Frames are processed sequentially by a single caller; the status summary
// may be requested concurrently from another goroutine.
type Engine struct {
	cfg   Config
	hall  string
	sink  AlertSink
	table *ZoneTable
	log   *logger.Logger
	now   func() time.Time

	mu             sync.RWMutex
	grid           *Grid
	lastDetections int
}

// NewEngine creates an engine with the given knobs and alert sink. The clock
// is injected so dwell and cooldown timing are testable; pass nil for
// time.Now.
func NewEngine(cfg Config, hall string, sink AlertSink, log *logger.Logger, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		cfg:   cfg,
		hall:  hall,
		sink:  sink,
		table: NewZoneTable(),
		log:   log,
		now:   clock,
	}
}

// SetGrid validates and atomically installs a new grid configuration. On
// validation failure the previous configuration stays active and the error
// is returned to the caller.
func (e *Engine) SetGrid(cfg model.GridConfig) error {
	grid, err := NewGrid(cfg)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.grid = grid
	e.mu.Unlock()

	e.log.Info("Grid config installed: %dx%d over %dx%d canvas", cfg.Rows, cfg.Cols, cfg.CanvasWidth, cfg.CanvasHeight)
	return nil
}

// GridConfig returns the active grid configuration, or nil if none is set.
func (e *Engine) GridConfig() *model.GridConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.grid == nil {
		return nil
	}
	cfg := e.grid.Config()
	return &cfg
}

// ProcessFrame runs one frame step over the raw detections and returns the
// enriched records for overlay rendering. Detections of other classes or
// below the confidence floor are discarded; detections whose center falls
// outside the grid are silently skipped.
func (e *Engine) ProcessFrame(detections []model.Detection, frameWidth, frameHeight int) []model.EnrichedDetection {
	e.mu.RLock()
	grid := e.grid
	e.mu.RUnlock()

	now := e.now()
	var enriched []model.EnrichedDetection

	if grid != nil {
		for _, det := range detections {
			if det.ClassID != e.cfg.TargetClassID || det.Confidence < e.cfg.MinConfidence {
				continue
			}

			key, ok := grid.ZoneFor(det.Box, frameWidth, frameHeight)
			if !ok {
				continue
			}

			dwell, lastAlert := e.table.Touch(key, now, det.Box, e.cfg.GapTolerance)
			score := Score(dwell, det.Confidence, e.cfg.StationaryThreshold)

			enriched = append(enriched, model.EnrichedDetection{
				Detection: det,
				Zone:      key.String(),
				Duration:  dwell.Seconds(),
				RiskScore: score,
			})

			if score >= e.cfg.HighRiskThreshold && e.cooldownExpired(lastAlert, now) {
				e.emitAlert(key, score, det.Box, now)
			}
		}
	}

	e.mu.Lock()
	e.lastDetections = len(enriched)
	e.mu.Unlock()

	return enriched
}

// Status sweeps stale zones and returns the current summary. Runs on its own
// cadence, concurrent with frame processing.
func (e *Engine) Status() model.StatusSummary {
	now := e.now()
	if removed := e.table.SweepStale(now, e.cfg.StaleRetention); removed > 0 {
		e.log.Info("Swept %d stale zone(s)", removed)
	}

	e.mu.RLock()
	detections := e.lastDetections
	e.mu.RUnlock()

	return model.StatusSummary{
		Detections:  detections,
		ActiveZones: e.table.ActiveZones(now, e.cfg.StaleRetention),
	}
}

// Table exposes the zone table for inspection.
func (e *Engine) Table() *ZoneTable {
	return e.table
}

func (e *Engine) cooldownExpired(lastAlert time.Time, now time.Time) bool {
	if lastAlert.IsZero() {
		return true
	}
	return now.Sub(lastAlert) >= e.cfg.AlertCooldown
}

// emitAlert hands the event to the sink and starts the zone's cooldown. The
// cooldown is recorded regardless of what the sink does with the event, so a
// failed persist cannot re-fire the same alert every frame.
func (e *Engine) emitAlert(key model.ZoneKey, score float64, box model.BoundingBox, now time.Time) {
	event := model.AlertEvent{
		ID:        uuid.NewString(),
		Hall:      e.hall,
		Zone:      key.String(),
		RiskScore: score,
		Box:       box,
		Timestamp: now,
	}

	e.table.MarkAlerted(key, now)
	e.log.Warning("ALERT: phone in zone %s, risk %.2f", event.Zone, event.RiskScore)
	e.sink.Emit(event)
}
