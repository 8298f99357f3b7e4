package alerts

import (
	"sync"
	"time"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/metrics"
	"cinemaguard/internal/model"
)

// Persister stores alert events.
type Persister interface {
	Insert(event *model.AlertEvent) error
}

// Broadcaster pushes alert messages to connected viewers.
type Broadcaster interface {
	BroadcastJSON(v interface{})
}

// SnapshotTaker saves an evidence frame for a fired alert.
type SnapshotTaker interface {
	Capture(event model.AlertEvent, frame []byte)
}

// FrameSource returns the current frame, if any, for evidence snapshots.
type FrameSource func() ([]byte, bool)

const (
	persistRetries    = 3
	persistRetryDelay = 500 * time.Millisecond
)

// Emitter is the alert sink: it decouples the frame loop from persistence
// and broadcast through a bounded queue. A full queue drops the event (the
// engine has already recorded the cooldown) instead of stalling detection.
type Emitter struct {
	queue     chan model.AlertEvent
	repo      Persister
	hub       Broadcaster
	snapshots SnapshotTaker
	frames    FrameSource
	metrics   *metrics.Metrics
	logger    *logger.Logger
	wg        sync.WaitGroup
}

type alertMessage struct {
	Type string `json:"type"`
	model.AlertEvent
}

// NewEmitter creates an emitter and starts its worker. snapshots and frames
// may be nil to disable evidence capture.
func NewEmitter(queueSize int, repo Persister, hub Broadcaster, snapshots SnapshotTaker, frames FrameSource, m *metrics.Metrics, logger *logger.Logger) *Emitter {
	e := &Emitter{
		queue:     make(chan model.AlertEvent, queueSize),
		repo:      repo,
		hub:       hub,
		snapshots: snapshots,
		frames:    frames,
		metrics:   m,
		logger:    logger,
	}

	e.wg.Add(1)
	go e.worker()

	return e
}

// Emit queues an alert event without blocking the caller.
func (e *Emitter) Emit(event model.AlertEvent) {
	select {
	case e.queue <- event:
		e.metrics.AlertsEmitted.Inc()
	default:
		e.metrics.AlertsDropped.Inc()
		e.logger.Warning("Alert queue full - dropping alert for zone %s", event.Zone)
	}
}

// Stop drains the queue and waits for the worker to finish.
func (e *Emitter) Stop() {
	close(e.queue)
	e.wg.Wait()
}

func (e *Emitter) worker() {
	defer e.wg.Done()

	for event := range e.queue {
		e.handle(event)
	}
}

// handle persists, broadcasts and snapshots one event. Failures are logged
// and counted but never propagate; the cooldown is already in effect.
func (e *Emitter) handle(event model.AlertEvent) {
	if err := e.persistWithRetry(&event); err != nil {
		e.metrics.SinkErrors.Inc()
		e.logger.Error("Failed to persist alert %s: %v", event.ID, err)
	}

	e.hub.BroadcastJSON(alertMessage{Type: "alert", AlertEvent: event})

	if e.snapshots != nil && e.frames != nil {
		if frame, ok := e.frames(); ok {
			e.snapshots.Capture(event, frame)
		}
	}
}

func (e *Emitter) persistWithRetry(event *model.AlertEvent) error {
	delay := persistRetryDelay
	var err error
	for attempt := 0; attempt < persistRetries; attempt++ {
		if err = e.repo.Insert(event); err == nil {
			return nil
		}
		e.logger.Warning("Persist alert attempt %d/%d failed: %v", attempt+1, persistRetries, err)
		if attempt < persistRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
