// Package rasterize converts operator-drawn muscle-group polygons into
// binary inclusion masks and partitions tissue masks with them.
package rasterize

import (
	"fmt"
	"math"

	"thighseg/pkg/imaging"
)

// Point is a vertex in image coordinate space: X along columns, Y along
// rows. Vertices are fractional because digitizing devices report
// sub-pixel positions.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Polygon is an ordered vertex sequence, implicitly closed (the last
// vertex connects back to the first). Polygons are never mutated after
// creation. Self-intersecting polygons are permitted; the even-odd rule
// resolves them without validation.
type Polygon []Point

// DegeneratePolygonError is returned for polygons with fewer than three
// vertices, which enclose no area.
type DegeneratePolygonError struct {
	Vertices int
}

func (e *DegeneratePolygonError) Error() string {
	return fmt.Sprintf("rasterize: polygon with %d vertices cannot enclose a region (need at least 3)", e.Vertices)
}

// onEdgeEps absorbs floating-point error when testing whether a pixel
// center sits exactly on a polygon edge.
const onEdgeEps = 1e-9

// Rasterize returns the mask of all grid cells whose center lies inside
// the polygon under the even-odd crossing rule. Cell (row, col) has its
// center at (col+0.5, row+0.5). Points exactly on an edge classify as
// inside: the drawn boundary itself is part of the enclosed tissue.
func Rasterize(p Polygon, rows, cols int) (imaging.Mask, error) {
	if len(p) < 3 {
		return imaging.Mask{}, &DegeneratePolygonError{Vertices: len(p)}
	}

	mask := imaging.NewMask(rows, cols)

	// Restrict the scan to the polygon's bounding box; everything
	// outside it is trivially excluded.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}

	rowLo := clamp(int(math.Floor(minY-0.5)), 0, rows-1)
	rowHi := clamp(int(math.Ceil(maxY)), 0, rows-1)
	colLo := clamp(int(math.Floor(minX-0.5)), 0, cols-1)
	colHi := clamp(int(math.Ceil(maxX)), 0, cols-1)
	if maxY < 0 || minY > float64(rows) || maxX < 0 || minX > float64(cols) {
		return mask, nil
	}

	for row := rowLo; row <= rowHi; row++ {
		cy := float64(row) + 0.5
		for col := colLo; col <= colHi; col++ {
			cx := float64(col) + 0.5
			if contains(p, cx, cy) {
				mask.Set(row, col, true)
			}
		}
	}
	return mask, nil
}

// Partition splits a tissue mask by the polygon: the first result is
// the subset of the mask inside the polygon, the second the subset
// outside. Both are fresh masks; the input is not modified.
func Partition(m imaging.Mask, p Polygon) (inside, outside imaging.Mask, err error) {
	raster, err := Rasterize(p, m.Rows(), m.Cols())
	if err != nil {
		return imaging.Mask{}, imaging.Mask{}, err
	}
	return m.Intersect(raster), m.Difference(raster), nil
}

// contains applies the even-odd crossing-number test, with an explicit
// on-edge check first so boundary points always classify inside.
func contains(p Polygon, x, y float64) bool {
	n := len(p)
	for i := 0; i < n; i++ {
		if onSegment(p[i], p[(i+1)%n], x, y) {
			return true
		}
	}

	inside := false
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		if (a.Y > y) == (b.Y > y) {
			continue
		}
		// x-coordinate where the edge crosses the horizontal ray.
		crossX := a.X + (y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < crossX {
			inside = !inside
		}
	}
	return inside
}

// onSegment reports whether (x, y) lies on the closed segment a-b.
func onSegment(a, b Point, x, y float64) bool {
	cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
	if math.Abs(cross) > onEdgeEps*math.Max(1, math.Hypot(b.X-a.X, b.Y-a.Y)) {
		return false
	}
	if x < math.Min(a.X, b.X)-onEdgeEps || x > math.Max(a.X, b.X)+onEdgeEps {
		return false
	}
	if y < math.Min(a.Y, b.Y)-onEdgeEps || y > math.Max(a.Y, b.Y)+onEdgeEps {
		return false
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
