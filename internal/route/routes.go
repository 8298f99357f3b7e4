package route

import (
	"net/http"
	"os"
	"path/filepath"

	"cinemaguard/internal/config"
	"cinemaguard/internal/handler"
	"cinemaguard/internal/logger"
	"cinemaguard/internal/metrics"
	"cinemaguard/internal/middleware"
	"cinemaguard/internal/repository"
	"cinemaguard/internal/repository/sqlite"
	"cinemaguard/internal/service/ai"
	"cinemaguard/internal/service/camera"
	"cinemaguard/internal/service/monitor"
	ws "cinemaguard/internal/service/websocket"
	"cinemaguard/internal/track"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", path+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// Deps bundles everything the routes need.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Engine   *track.Engine
	Monitor  *monitor.Monitor
	Camera   *camera.Service
	Detector *ai.DetectorService
	Hub      *ws.HubService
	Metrics  *metrics.Metrics
	DB       *sqlite.DB

	HallRepo     repository.HallRepository
	AlertRepo    repository.AlertRepository
	SnapshotRepo repository.SnapshotRepository
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Video endpoints
	mux.HandleFunc("/video_feed", handler.VideoFeedHandler(d.Monitor, d.Logger))
	mux.HandleFunc("/snapshot", handler.SnapshotHandler(d.Monitor))

	// API endpoints
	mux.HandleFunc("/ws/alerts", handler.AlertsWebsocketHandler(d.Hub, d.Logger))
	mux.HandleFunc("/api/grid", handler.GridHandler(d.Engine, d.HallRepo, d.Config, d.Logger))
	mux.HandleFunc("/api/alerts", handler.RecentAlertsHandler(d.AlertRepo, d.Config, d.Logger))
	mux.HandleFunc("/api/snapshots", handler.RecentSnapshotsHandler(d.SnapshotRepo, d.Logger))

	// Monitoring endpoints
	mux.HandleFunc("/health", handler.HealthHandler(d.Camera, d.Detector, d.DB))
	mux.Handle("/metrics", d.Metrics.Handler())

	// Log endpoints
	mux.HandleFunc("/logs/info", handler.ShowInfoLogsHandler(d.Config))
	mux.HandleFunc("/logs/warning", handler.ShowWarningLogsHandler(d.Config))
	mux.HandleFunc("/logs/error", handler.ShowErrorLogsHandler(d.Config))

	mux.HandleFunc("/logs/info/clear", handler.ClearInfoLogsHandler(d.Logger))
	mux.HandleFunc("/logs/warning/clear", handler.ClearWarningLogsHandler(d.Logger))
	mux.HandleFunc("/logs/error/clear", handler.ClearErrorLogsHandler(d.Logger))

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(d.Config, d.Logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /monitor -> /static/monitor.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	// Apply middleware
	return middleware.AuthMiddleware(mux)
}
