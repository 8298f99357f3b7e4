package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cinemaguard/internal/config"
	"cinemaguard/internal/logger"
	"cinemaguard/internal/metrics"
	"cinemaguard/internal/model"
	"cinemaguard/internal/repository/sqlite"
	"cinemaguard/internal/route"
	"cinemaguard/internal/service/ai"
	"cinemaguard/internal/service/alerts"
	"cinemaguard/internal/service/camera"
	"cinemaguard/internal/service/monitor"
	"cinemaguard/internal/service/storage"
	ws "cinemaguard/internal/service/websocket"
	"cinemaguard/internal/track"
)

// App wires the tracking engine to its collaborators: camera, detector,
// persistence, websocket hub and HTTP surface.
type App struct {
	config    *config.Config
	logger    *logger.Logger
	db        *sqlite.DB
	camera    *camera.Service
	detector  *ai.DetectorService
	hub       *ws.HubService
	emitter   *alerts.Emitter
	snapshots *storage.SnapshotService
	engine    *track.Engine
	monitor   *monitor.Monitor
	metrics   *metrics.Metrics
	router    http.Handler
}

// NewApp builds the full dependency graph from configuration.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	hallRepo := sqlite.NewHallRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)
	snapshotRepo := sqlite.NewSnapshotRepository(db)

	m := metrics.New()
	hub := ws.NewHubService(log)
	cam := camera.NewService(cfg.CameraSource, log)
	detector := ai.NewDetectorService(cfg.ModelPath, cfg.ConfigPath, log)
	snapshots := storage.NewSnapshotService(cfg.SnapshotDir, cfg.SnapshotBufferLimit, snapshotRepo, log)

	frames := func() ([]byte, bool) {
		frame, ok := cam.Latest()
		if !ok {
			return nil, false
		}
		return frame.Data, true
	}
	emitter := alerts.NewEmitter(cfg.AlertQueueSize, alertRepo, hub, snapshots, frames, m, log)

	engine := track.NewEngine(track.Config{
		TargetClassID:       cfg.TargetClassID,
		MinConfidence:       cfg.MinConfidence,
		StationaryThreshold: seconds(cfg.StationaryThreshold),
		HighRiskThreshold:   cfg.HighRiskThreshold,
		AlertCooldown:       seconds(cfg.AlertCooldown),
		GapTolerance:        seconds(cfg.ZoneGapTolerance),
		StaleRetention:      seconds(cfg.StaleRetention),
	}, cfg.HallName, emitter, log, nil)

	// Restore the stored grid, or fall back to a full-canvas default until
	// one is configured.
	gridCfg, err := hallRepo.GetGridConfig(cfg.HallName)
	if err != nil {
		log.Error("Failed to load stored grid config: %v", err)
	}
	if gridCfg == nil {
		defaultCfg := model.DefaultGridConfig(cfg.GridRows, cfg.GridCols, 800, 600)
		gridCfg = &defaultCfg
	}
	if err := engine.SetGrid(*gridCfg); err != nil {
		return nil, fmt.Errorf("failed to install grid config: %w", err)
	}

	mon := monitor.New(cam, detector, engine, hub, m, log, seconds(cfg.StatusInterval), cfg.HighRiskThreshold)

	router := route.SetupRoutes(route.Deps{
		Config:       cfg,
		Logger:       log,
		Engine:       engine,
		Monitor:      mon,
		Camera:       cam,
		Detector:     detector,
		Hub:          hub,
		Metrics:      m,
		DB:           db,
		HallRepo:     hallRepo,
		AlertRepo:    alertRepo,
		SnapshotRepo: snapshotRepo,
	})

	return &App{
		config:    cfg,
		logger:    log,
		db:        db,
		camera:    cam,
		detector:  detector,
		hub:       hub,
		emitter:   emitter,
		snapshots: snapshots,
		engine:    engine,
		monitor:   mon,
		metrics:   m,
		router:    router,
	}, nil
}

// Run starts all background services and serves HTTP until ctx is
// cancelled, then shuts down in dependency order.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run()
	go a.snapshots.Run(a.config.SnapshotFlushInterval)

	if err := a.camera.Start(); err != nil {
		a.logger.Warning("Camera not available: %v", err)
	}

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		a.monitor.Run(ctx)
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: a.router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	a.logger.Info("🎬 CinemaGuard server started")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("🏛  Hall: %s", a.config.HallName)

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
	}

	<-monitorDone
	a.shutdown()
	return err
}

// shutdown stops services so no in-flight work is lost.
func (a *App) shutdown() {
	a.camera.Stop()
	a.emitter.Stop()
	a.snapshots.Flush()
	a.detector.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Info("🛑 CinemaGuard server stopped")
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
