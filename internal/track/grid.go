package track

import (
	"math"

	"github.com/pkg/errors"

	"cinemaguard/internal/model"
)

// Grid is a validated, immutable snapshot of a GridConfig together with the
// precomputed bounding rectangle of its corner quadrilateral. The mapping
// deliberately uses only the axis-aligned bounding rectangle of the corners;
// no projective correction is applied.
type Grid struct {
	cfg                    model.GridConfig
	minX, minY, maxX, maxY float64
}

// NewGrid validates cfg and returns a Grid. Malformed configs (wrong corner
// count, self-intersecting quadrilateral, non-positive rows/cols or canvas
// dimensions) are rejected here so the per-frame mapping never fails.
func NewGrid(cfg model.GridConfig) (*Grid, error) {
	if len(cfg.Corners) != 4 {
		return nil, errors.Errorf("grid config requires exactly 4 corners, got %d", len(cfg.Corners))
	}
	if cfg.Rows < 1 || cfg.Cols < 1 {
		return nil, errors.Errorf("grid resolution must be at least 1x1, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, errors.Errorf("canvas dimensions must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if quadSelfIntersects(cfg.Corners) {
		return nil, errors.New("grid corners form a self-intersecting quadrilateral")
	}

	g := &Grid{
		cfg:  cfg,
		minX: math.Inf(1),
		minY: math.Inf(1),
		maxX: math.Inf(-1),
		maxY: math.Inf(-1),
	}
	for _, p := range cfg.Corners {
		g.minX = math.Min(g.minX, p.X)
		g.minY = math.Min(g.minY, p.Y)
		g.maxX = math.Max(g.maxX, p.X)
		g.maxY = math.Max(g.maxY, p.Y)
	}
	if g.maxX-g.minX <= 0 || g.maxY-g.minY <= 0 {
		return nil, errors.New("grid corners span a degenerate area")
	}
	return g, nil
}

// Config returns the underlying configuration snapshot.
func (g *Grid) Config() model.GridConfig {
	return g.cfg
}

// ZoneFor maps a bounding box to the grid zone containing its center point.
// The center is scaled from frame pixel space into canvas space, then
// normalized against the corner bounding rectangle. Centers outside that
// rectangle return ok=false; values exactly on the far edge clamp into the
// last row/column.
func (g *Grid) ZoneFor(box model.BoundingBox, frameWidth, frameHeight int) (model.ZoneKey, bool) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return model.ZoneKey{}, false
	}

	cx, cy := box.Center()

	// Scale into canvas space when the frame differs from the reference canvas.
	cx *= float64(g.cfg.CanvasWidth) / float64(frameWidth)
	cy *= float64(g.cfg.CanvasHeight) / float64(frameHeight)

	u := (cx - g.minX) / (g.maxX - g.minX)
	v := (cy - g.minY) / (g.maxY - g.minY)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return model.ZoneKey{}, false
	}

	col := int(u * float64(g.cfg.Cols))
	row := int(v * float64(g.cfg.Rows))
	// u==1.0 or v==1.0 lands exactly past the last cell.
	if col > g.cfg.Cols-1 {
		col = g.cfg.Cols - 1
	}
	if row > g.cfg.Rows-1 {
		row = g.cfg.Rows - 1
	}

	return model.ZoneKey{Row: row, Col: col}, true
}

// quadSelfIntersects reports whether either pair of opposite edges of the
// quadrilateral p0-p1-p2-p3 crosses the other.
func quadSelfIntersects(c []model.Point) bool {
	return segmentsCross(c[0], c[1], c[2], c[3]) || segmentsCross(c[1], c[2], c[3], c[0])
}

func segmentsCross(a, b, c, d model.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b model.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
