package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the tracking pipeline.
type Metrics struct {
	FramesProcessed prometheus.Counter
	FramesDropped   prometheus.Counter
	DetectorErrors  prometheus.Counter
	Detections      prometheus.Counter
	AlertsEmitted   prometheus.Counter
	AlertsDropped   prometheus.Counter
	SinkErrors      prometheus.Counter
	ActiveZones     prometheus.Gauge
	ProcessLatency  prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_frames_processed_total",
			Help: "Total frames run through the tracking engine",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_frames_dropped_total",
			Help: "Frames skipped because a newer frame replaced them",
		}),
		DetectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_detector_errors_total",
			Help: "Detector failures treated as empty detection sets",
		}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_detections_total",
			Help: "Total enriched detections produced",
		}),
		AlertsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_alerts_emitted_total",
			Help: "Alert events handed to the alert sink",
		}),
		AlertsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_alerts_dropped_total",
			Help: "Alert events dropped because the sink queue was full",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinemaguard_sink_errors_total",
			Help: "Persistence or broadcast failures for alert events",
		}),
		ActiveZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cinemaguard_active_zones",
			Help: "Zones with a detection inside the retention window",
		}),
		ProcessLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cinemaguard_process_latency_ms",
			Help: "Latency of the last frame step in milliseconds",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesProcessed,
		m.FramesDropped,
		m.DetectorErrors,
		m.Detections,
		m.AlertsEmitted,
		m.AlertsDropped,
		m.SinkErrors,
		m.ActiveZones,
		m.ProcessLatency,
	)

	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
