package handler

import (
	"encoding/json"
	"net/http"

	"cinemaguard/internal/config"
	"cinemaguard/internal/logger"
	"cinemaguard/internal/model"
	"cinemaguard/internal/repository"
	"cinemaguard/internal/track"
)

// GridHandler serves GET/POST /api/grid. A POST replaces the active grid
// configuration wholesale; invalid configs are rejected with 400 and the
// previous configuration stays active.
func GridHandler(engine *track.Engine, hallRepo repository.HallRepository, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, map[string]interface{}{"grid_config": engine.GridConfig()})

		case http.MethodPost:
			var gridCfg model.GridConfig
			if err := json.NewDecoder(r.Body).Decode(&gridCfg); err != nil {
				http.Error(w, "Invalid JSON body", http.StatusBadRequest)
				return
			}

			if err := engine.SetGrid(gridCfg); err != nil {
				logger.Warning("Rejected grid config: %v", err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			if err := hallRepo.SaveGridConfig(cfg.HallName, &gridCfg); err != nil {
				// The engine already runs on the new config; persistence
				// failure is reported but not rolled back.
				logger.Error("Failed to persist grid config: %v", err)
				http.Error(w, "Failed to save grid config", http.StatusInternalServerError)
				return
			}

			writeJSON(w, map[string]interface{}{"status": "success", "grid_config": gridCfg})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
