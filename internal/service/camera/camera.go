package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"cinemaguard/internal/logger"
)

// Frame is one captured frame, JPEG-encoded, with its pixel dimensions and a
// sequence number so consumers can tell whether they already processed it.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	Seq        uint64
	CapturedAt time.Time
}

// Service continuously reads frames from the camera into a single latest-
// frame slot. Consumers always see the most recent frame; intermediate
// frames are overwritten, never queued.
type Service struct {
	source string
	logger *logger.Logger

	capture *gocv.VideoCapture
	stop    chan struct{}
	done    chan struct{}

	mu       sync.RWMutex
	latest   Frame
	hasFrame bool
}

// NewService creates a camera service for the given source (device index or
// RTSP/file URL).
func NewService(source string, logger *logger.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start opens the capture device and launches the background capture loop.
func (s *Service) Start() error {
	capture, err := gocv.OpenVideoCapture(s.source)
	if err != nil {
		return fmt.Errorf("failed to open camera %q: %w", s.source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("camera %q is not opened", s.source)
	}

	s.capture = capture
	s.logger.Info("Camera connected: %s", s.source)

	go s.captureLoop()
	return nil
}

// captureLoop reads frames at roughly 30 fps and overwrites the latest slot.
func (s *Service) captureLoop() {
	defer close(s.done)

	mat := gocv.NewMat()
	defer mat.Close()

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		if !s.capture.Read(&mat) || mat.Empty() {
			continue
		}

		buf, err := gocv.IMEncode(".jpg", mat)
		if err != nil {
			s.logger.Error("Failed to encode frame: %v", err)
			continue
		}

		data := make([]byte, len(buf.GetBytes()))
		copy(data, buf.GetBytes())
		buf.Close()

		seq++
		s.mu.Lock()
		s.latest = Frame{
			Data:       data,
			Width:      mat.Cols(),
			Height:     mat.Rows(),
			Seq:        seq,
			CapturedAt: time.Now(),
		}
		s.hasFrame = true
		s.mu.Unlock()
	}
}

// Latest returns the most recent frame, or ok=false before the first frame
// arrives.
func (s *Service) Latest() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasFrame
}

// IsOpened reports whether the capture device is connected.
func (s *Service) IsOpened() bool {
	return s.capture != nil && s.capture.IsOpened()
}

// Stop ends the capture loop and releases the device.
func (s *Service) Stop() {
	close(s.stop)
	if s.capture != nil {
		<-s.done
		s.capture.Close()
		s.logger.Info("Camera released")
	}
}
