package handler

import (
	"net/http"
	"strconv"

	"cinemaguard/internal/config"
	"cinemaguard/internal/logger"
	"cinemaguard/internal/repository"
)

const defaultAlertLimit = 10

// RecentAlertsHandler serves GET /api/alerts?limit=N with the newest alerts
// for the configured hall.
func RecentAlertsHandler(alertRepo repository.AlertRepository, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := atoiDefault(r.URL.Query().Get("limit"), defaultAlertLimit)

		alerts, err := alertRepo.GetRecent(cfg.HallName, limit)
		if err != nil {
			logger.Error("Failed to load alerts: %v", err)
			http.Error(w, "Failed to load alerts", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]interface{}{"alerts": alerts})
	}
}

// atoiDefault parses a positive integer, falling back to def on anything else.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
