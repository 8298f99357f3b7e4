package model

import "fmt"

// BoundingBox is an axis-aligned box in source-frame pixel coordinates,
// with X1 < X2 and Y1 < Y2.
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Center returns the box center point.
func (b BoundingBox) Center() (float64, float64) {
	return float64(b.X1+b.X2) / 2, float64(b.Y1+b.Y2) / 2
}

// Detection is a raw per-frame detector output.
type Detection struct {
	Box        BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
	ClassID    int         `json:"class_id"`
}

// EnrichedDetection is a detection the tracking engine has mapped to a zone
// and scored. Duration is the continuous dwell of the zone in seconds.
type EnrichedDetection struct {
	Detection
	Zone      string  `json:"zone"`
	Duration  float64 `json:"duration"`
	RiskScore float64 `json:"risk_score"`
}

// ZoneKey identifies one cell of the configured grid, 0-indexed.
type ZoneKey struct {
	Row int
	Col int
}

// String serializes the key in the external "row,col" form.
func (k ZoneKey) String() string {
	return fmt.Sprintf("%d,%d", k.Row, k.Col)
}
