package handler

import (
	"fmt"
	"net/http"
	"time"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/service/monitor"
)

// streamInterval is the MJPEG frame pacing for viewers.
const streamInterval = 100 * time.Millisecond

// VideoFeedHandler serves GET /video_feed as an MJPEG stream with the
// detection overlay.
func VideoFeedHandler(mon *monitor.Monitor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		w.Header().Set("Cache-Control", "no-cache")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		ticker := time.NewTicker(streamInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}

			frame, ok := mon.AnnotatedFrame()
			if !ok {
				continue
			}

			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// SnapshotHandler serves GET /snapshot as a single JPEG frame.
func SnapshotHandler(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, ok := mon.AnnotatedFrame()
		if !ok {
			http.Error(w, "No frame available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(frame)
	}
}
