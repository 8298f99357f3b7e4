package handler

import (
	"net/http"

	"cinemaguard/internal/repository/sqlite"
	"cinemaguard/internal/service/ai"
	"cinemaguard/internal/service/camera"
)

// HealthHandler serves GET /health with the state of the main components.
func HealthHandler(cam *camera.Service, detector *ai.DetectorService, db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbOK := db.Conn().Ping() == nil

		status := "healthy"
		if !cam.IsOpened() || !detector.Ready() || !dbOK {
			status = "degraded"
		}

		writeJSON(w, map[string]interface{}{
			"status":   status,
			"camera":   cam.IsOpened(),
			"detector": detector.Ready(),
			"database": dbOK,
		})
	}
}
