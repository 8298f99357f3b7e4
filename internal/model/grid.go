package model

import "time"

// Point is a pixel coordinate in the reference canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridConfig describes the monitored area: four corner points ordered
// top-left, top-right, bottom-right, bottom-left, the grid resolution
// inside the quadrilateral, and the canvas dimensions the corners were
// authored against. A config is replaced wholesale, never mutated.
type GridConfig struct {
	Corners      []Point `json:"corners"`
	Rows         int     `json:"grid_rows"`
	Cols         int     `json:"grid_cols"`
	CanvasWidth  int     `json:"canvas_width"`
	CanvasHeight int     `json:"canvas_height"`
}

// DefaultGridConfig covers the full canvas with a rows x cols grid.
func DefaultGridConfig(rows, cols, canvasWidth, canvasHeight int) GridConfig {
	w := float64(canvasWidth)
	h := float64(canvasHeight)
	return GridConfig{
		Corners: []Point{
			{X: 0, Y: 0},
			{X: w, Y: 0},
			{X: w, Y: h},
			{X: 0, Y: h},
		},
		Rows:         rows,
		Cols:         cols,
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
	}
}

// Hall is a monitored cinema hall and its stored grid configuration.
type Hall struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	GridConfig *GridConfig `json:"grid_config,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
