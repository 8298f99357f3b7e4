package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.TargetClassID != 67 {
		t.Errorf("Expected default target class 67 (cell phone), got %d", cfg.TargetClassID)
	}
	if cfg.MinConfidence != 0.4 {
		t.Errorf("Expected default min confidence 0.4, got %f", cfg.MinConfidence)
	}
	if cfg.StationaryThreshold != 30.0 {
		t.Errorf("Expected default stationary threshold 30s, got %f", cfg.StationaryThreshold)
	}
	if cfg.HighRiskThreshold != 0.8 {
		t.Errorf("Expected default high risk threshold 0.8, got %f", cfg.HighRiskThreshold)
	}
	if cfg.AlertCooldown != 60.0 {
		t.Errorf("Expected default alert cooldown 60s, got %f", cfg.AlertCooldown)
	}
	if cfg.GridRows != 10 || cfg.GridCols != 10 {
		t.Errorf("Expected default 10x10 grid, got %dx%d", cfg.GridRows, cfg.GridCols)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HALL_NAME", "Hall 7")
	t.Setenv("STATIONARY_THRESHOLD", "12.5")
	t.Setenv("GRID_ROWS", "6")

	cfg := Load()

	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Port)
	}
	if cfg.HallName != "Hall 7" {
		t.Errorf("Expected hall name 'Hall 7', got %q", cfg.HallName)
	}
	if cfg.StationaryThreshold != 12.5 {
		t.Errorf("Expected stationary threshold 12.5, got %f", cfg.StationaryThreshold)
	}
	if cfg.GridRows != 6 {
		t.Errorf("Expected 6 grid rows, got %d", cfg.GridRows)
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("MIN_CONFIDENCE", "high")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Expected fallback port 8080, got %d", cfg.Port)
	}
	if cfg.MinConfidence != 0.4 {
		t.Errorf("Expected fallback min confidence 0.4, got %f", cfg.MinConfidence)
	}
}
