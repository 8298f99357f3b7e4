package model

import "time"

// AlertEvent is emitted when a zone's risk score crosses the configured
// threshold outside its cooldown window. Immutable once constructed.
type AlertEvent struct {
	ID        string      `json:"id"`
	Hall      string      `json:"hall"`
	Zone      string      `json:"zone"`
	RiskScore float64     `json:"risk_score"`
	Box       BoundingBox `json:"bbox"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusSummary is the periodic engine status broadcast to viewers,
// independent of alerts.
type StatusSummary struct {
	Detections  int `json:"detections"`
	ActiveZones int `json:"active_zones"`
}

// Snapshot is an evidence frame saved when an alert fired.
type Snapshot struct {
	ID        int64     `json:"id"`
	AlertID   string    `json:"alert_id"`
	Zone      string    `json:"zone"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
	CreatedAt time.Time `json:"created_at"`
}
