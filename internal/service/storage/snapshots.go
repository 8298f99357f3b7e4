package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/model"
	"cinemaguard/internal/repository"
)

// SnapshotService buffers evidence frames for fired alerts in memory and
// periodically flushes them to disk and the database.
type SnapshotService struct {
	dir         string
	bufferLimit int
	buffered    []bufferedSnapshot
	mu          sync.Mutex
	logger      *logger.Logger
	repo        repository.SnapshotRepository
}

type bufferedSnapshot struct {
	event   model.AlertEvent
	data    []byte
	takenAt time.Time
}

// NewSnapshotService creates a snapshot service writing into dir.
func NewSnapshotService(dir string, bufferLimit int, repo repository.SnapshotRepository, logger *logger.Logger) *SnapshotService {
	return &SnapshotService{
		dir:         dir,
		bufferLimit: bufferLimit,
		buffered:    make([]bufferedSnapshot, 0),
		logger:      logger,
		repo:        repo,
	}
}

// Run starts a ticker loop that periodically flushes snapshots to disk.
func (s *SnapshotService) Run(flushIntervalSeconds int) {
	ticker := time.NewTicker(time.Duration(flushIntervalSeconds) * time.Second)

	defer ticker.Stop()
	for {
		<-ticker.C
		s.Flush()
	}
}

// Capture buffers the frame that triggered an alert. Frames beyond the
// buffer limit are dropped until the next flush.
func (s *SnapshotService) Capture(event model.AlertEvent, frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buffered) >= s.bufferLimit {
		s.logger.Warning("Snapshot buffer full - dropping frame for zone %s", event.Zone)
		return
	}

	data := make([]byte, len(frame))
	copy(data, frame)

	s.buffered = append(s.buffered, bufferedSnapshot{
		event:   event,
		data:    data,
		takenAt: time.Now(),
	})
}

// Flush writes buffered snapshots to disk and the database, then clears the
// buffer.
func (s *SnapshotService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buffered) == 0 {
		return
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Error("Error creating snapshot directory: %v", err)
		return
	}

	savedCount := 0
	for _, snap := range s.buffered {
		filename := fmt.Sprintf("%s_zone%s_%s.jpg",
			snap.takenAt.Format("2006-01-02_15-04_05.000"), snap.event.Zone, snap.event.ID)
		fullpath := filepath.Join(s.dir, filename)

		if err := os.WriteFile(fullpath, snap.data, 0644); err != nil {
			s.logger.Error("Error saving snapshot %s: %v", filename, err)
			continue
		}

		if s.repo != nil {
			record := &model.Snapshot{
				AlertID:   snap.event.ID,
				Zone:      snap.event.Zone,
				Filename:  filename,
				FilePath:  fullpath,
				FileSize:  int64(len(snap.data)),
				CreatedAt: snap.takenAt,
			}
			if _, err := s.repo.Insert(record); err != nil {
				s.logger.Error("Error saving snapshot to database %s: %v", filename, err)
				continue
			}
		}

		savedCount++
	}

	s.logger.Info("Flushed %d snapshot(s) to disk", savedCount)
	s.buffered = s.buffered[:0]
}
