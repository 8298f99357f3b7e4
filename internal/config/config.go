package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server and tracking settings, loaded from environment
// variables with sane defaults. Durations are expressed in seconds.
type Config struct {
	Port     int
	Password string
	HallName string

	CameraSource string
	ModelPath    string
	ConfigPath   string

	DBPath       string
	SnapshotDir  string
	LogDirectory string

	// Tracking knobs
	TargetClassID       int     // COCO class id (67 = cell phone)
	MinConfidence       float64 // detections below this are discarded
	StationaryThreshold float64 // seconds of dwell before risk is non-zero
	HighRiskThreshold   float64 // risk score that triggers an alert
	AlertCooldown       float64 // seconds between alerts for one zone
	ZoneGapTolerance    float64 // seconds of silence before dwell restarts
	StaleRetention      float64 // seconds before an idle zone is swept
	StatusInterval      float64 // seconds between status broadcasts

	GridRows int
	GridCols int

	AlertQueueSize        int
	SnapshotBufferLimit   int
	SnapshotFlushInterval int // seconds
}

// Load reads configuration from the environment. A .env file is loaded
// first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvAsInt("PORT", 8080),
		Password: getEnv("PASSWORD", "cinemaguard"),
		HallName: getEnv("HALL_NAME", "Cinema Hall 1"),

		CameraSource: getEnv("CAMERA_SOURCE", "0"),
		ModelPath:    getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ConfigPath:   getEnv("CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),

		DBPath:       getEnv("DB_PATH", filepath.Join(".", "data", "cinemaguard.db")),
		SnapshotDir:  getEnv("SNAPSHOT_DIR", filepath.Join(".", "snapshots")),
		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),

		TargetClassID:       getEnvAsInt("TARGET_CLASS_ID", 67),
		MinConfidence:       getEnvAsFloat("MIN_CONFIDENCE", 0.4),
		StationaryThreshold: getEnvAsFloat("STATIONARY_THRESHOLD", 30.0),
		HighRiskThreshold:   getEnvAsFloat("HIGH_RISK_THRESHOLD", 0.8),
		AlertCooldown:       getEnvAsFloat("ALERT_COOLDOWN", 60.0),
		ZoneGapTolerance:    getEnvAsFloat("ZONE_GAP_TOLERANCE", 2.0),
		StaleRetention:      getEnvAsFloat("STALE_RETENTION", 30.0),
		StatusInterval:      getEnvAsFloat("STATUS_INTERVAL", 1.0),

		GridRows: getEnvAsInt("GRID_ROWS", 10),
		GridCols: getEnvAsInt("GRID_COLS", 10),

		AlertQueueSize:        getEnvAsInt("ALERT_QUEUE_SIZE", 64),
		SnapshotBufferLimit:   getEnvAsInt("SNAPSHOT_BUFFER_LIMIT", 10),
		SnapshotFlushInterval: getEnvAsInt("SNAPSHOT_FLUSH_INTERVAL", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
