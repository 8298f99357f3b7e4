package handler

import (
	"net/http"

	"cinemaguard/internal/logger"
	"cinemaguard/internal/repository"
)

const defaultSnapshotLimit = 20

// RecentSnapshotsHandler serves GET /api/snapshots?limit=N with the newest
// alert evidence frames.
func RecentSnapshotsHandler(snapRepo repository.SnapshotRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := atoiDefault(r.URL.Query().Get("limit"), defaultSnapshotLimit)

		snaps, err := snapRepo.GetRecent(limit)
		if err != nil {
			logger.Error("Failed to load snapshots: %v", err)
			http.Error(w, "Failed to load snapshots", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{"snapshots": snaps})
	}
}
