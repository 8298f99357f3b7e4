package monitor

import (
	"context"
	"sync"
	"time"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/metrics"
	"cinemaguard/internal/model"
	"cinemaguard/internal/service/camera"
	"cinemaguard/internal/service/websocket"
	"cinemaguard/internal/track"
)

// Detector produces raw detections for a JPEG frame. A failure is treated
// as "zero detections this frame", never as a fatal error.
type Detector interface {
	Detect(frame []byte) ([]model.Detection, error)
}

// pollInterval is how often the frame loop checks for a newer frame.
const pollInterval = 50 * time.Millisecond

// Monitor drives the detection pipeline: it pulls the latest captured
// frame, runs the detector, feeds the tracking engine and keeps an
// annotated frame for the MJPEG stream. The status summary is broadcast on
// its own cadence, independent of per-frame processing.
type Monitor struct {
	camera         *camera.Service
	detector       Detector
	engine         *track.Engine
	hub            *websocket.HubService
	metrics        *metrics.Metrics
	logger         *logger.Logger
	statusInterval time.Duration
	highRisk       float64

	mu        sync.RWMutex
	annotated []byte
	lastSeq   uint64
}

type statusMessage struct {
	Type string `json:"type"`
	model.StatusSummary
}

// New creates a monitor; call Run to start it.
func New(cam *camera.Service, detector Detector, engine *track.Engine, hub *websocket.HubService,
	m *metrics.Metrics, logger *logger.Logger, statusInterval time.Duration, highRisk float64) *Monitor {
	return &Monitor{
		camera:         cam,
		detector:       detector,
		engine:         engine,
		hub:            hub,
		metrics:        m,
		logger:         logger,
		statusInterval: statusInterval,
		highRisk:       highRisk,
	}
}

// Run processes frames until the context is cancelled. The in-flight frame
// step always completes before Run returns.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.statusLoop(ctx)
	}()

	m.logger.Info("Monitor started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			m.logger.Info("Monitor stopped")
			return
		case <-ticker.C:
		}

		frame, ok := m.camera.Latest()
		if !ok || frame.Seq == m.lastSeq {
			continue
		}
		if m.lastSeq > 0 && frame.Seq > m.lastSeq+1 {
			m.metrics.FramesDropped.Add(float64(frame.Seq - m.lastSeq - 1))
		}
		m.lastSeq = frame.Seq

		m.processFrame(frame)
	}
}

// processFrame runs one full step: detect, track, annotate.
func (m *Monitor) processFrame(frame camera.Frame) {
	start := time.Now()

	detections, err := m.detector.Detect(frame.Data)
	if err != nil {
		m.metrics.DetectorErrors.Inc()
		detections = nil
	}

	enriched := m.engine.ProcessFrame(detections, frame.Width, frame.Height)
	m.metrics.FramesProcessed.Inc()
	m.metrics.Detections.Add(float64(len(enriched)))

	annotated, err := camera.DrawDetections(frame.Data, enriched, m.highRisk)
	if err != nil {
		m.logger.Error("Failed to draw detections: %v", err)
		annotated = frame.Data
	}

	m.mu.Lock()
	m.annotated = annotated
	m.mu.Unlock()

	m.metrics.ProcessLatency.Set(float64(time.Since(start).Milliseconds()))
}

// statusLoop sweeps stale zones and broadcasts the status summary.
func (m *Monitor) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(m.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status := m.engine.Status()
		m.metrics.ActiveZones.Set(float64(status.ActiveZones))
		m.hub.BroadcastJSON(statusMessage{Type: "status", StatusSummary: status})
	}
}

// AnnotatedFrame returns the most recent frame with detection overlay, or
// the raw frame before the first step completes.
func (m *Monitor) AnnotatedFrame() ([]byte, bool) {
	m.mu.RLock()
	annotated := m.annotated
	m.mu.RUnlock()

	if annotated != nil {
		return annotated, true
	}
	if frame, ok := m.camera.Latest(); ok {
		return frame.Data, true
	}
	return nil, false
}
