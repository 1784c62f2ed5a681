// Package imaging provides the raster primitives for the segmentation
// engine: an immutable integer intensity grid, boolean masks with the
// algebra used to combine tissue regions, and background cropping.
package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is a rectangular single-channel intensity raster. The sample
// data is fixed at construction time; every downstream product of the
// pipeline is a derived copy or a mask over it, so a Grid can be shared
// freely between goroutines.
//
// A Grid carries the observed intensity range of the original uncropped
// image (Min and Max). Sub-grids produced by cropping keep the parent
// range, because the range is used downstream as a class label and
// background sentinel and must stay consistent across the pipeline.
type Grid struct {
	data []int
	rows int
	cols int

	// rmin and rmax are the observed extremes of the original image.
	rmin int
	rmax int
}

// NewGrid builds a grid from row-major sample data. The slice is copied
// so the caller keeps ownership of its buffer. The observed range is
// computed from the samples.
func NewGrid(data []int, rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid data length %d does not match %dx%d", len(data), rows, cols)
	}

	g := &Grid{
		data: make([]int, len(data)),
		rows: rows,
		cols: cols,
		rmin: data[0],
		rmax: data[0],
	}
	copy(g.data, data)
	for _, v := range data {
		if v < g.rmin {
			g.rmin = v
		}
		if v > g.rmax {
			g.rmax = v
		}
	}
	return g, nil
}

// FromImage converts a decoded image into an intensity grid. Color
// images are forced to single channel using the luminance of each
// pixel, matching how acquisition exports are handled upstream.
func FromImage(img image.Image) (*Grid, error) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("image has empty bounds %v", bounds)
	}

	data := make([]int, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			gray := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			data[y*cols+x] = int(gray.Y)
		}
	}
	return NewGrid(data, rows, cols)
}

// Rows returns the number of rows in the grid.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns in the grid.
func (g *Grid) Cols() int { return g.cols }

// At returns the sample at (row, col). Callers are responsible for
// staying within bounds; out-of-range access panics like a slice.
func (g *Grid) At(row, col int) int {
	return g.data[row*g.cols+col]
}

// Min returns the observed minimum of the original uncropped image.
// This value doubles as the background sentinel.
func (g *Grid) Min() int { return g.rmin }

// Max returns the observed maximum of the original uncropped image.
// This value doubles as the foreground/fat sentinel when deriving the
// muscle-candidate plateau.
func (g *Grid) Max() int { return g.rmax }

// InBounds reports whether (row, col) addresses a valid sample.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// SubGrid copies the samples inside r into a new grid. The new grid
// keeps the parent's observed range rather than recomputing it from the
// window, so class labels derived from the range stay valid.
func (g *Grid) SubGrid(r Rect) (*Grid, error) {
	if r.RowMin < 0 || r.ColMin < 0 || r.RowMax >= g.rows || r.ColMax >= g.cols || r.RowMin > r.RowMax || r.ColMin > r.ColMax {
		return nil, fmt.Errorf("sub-grid rectangle %v outside %dx%d grid", r, g.rows, g.cols)
	}

	rows, cols := r.Rows(), r.Cols()
	data := make([]int, rows*cols)
	for row := 0; row < rows; row++ {
		src := (r.RowMin+row)*g.cols + r.ColMin
		copy(data[row*cols:(row+1)*cols], g.data[src:src+cols])
	}
	return &Grid{data: data, rows: rows, cols: cols, rmin: g.rmin, rmax: g.rmax}, nil
}

// Map returns a new grid whose samples are f applied to each sample of
// g. The range sentinels carry over unchanged so the derived grid stays
// comparable to the original (used to build the muscle-candidate
// plateau without mutating the source).
func (g *Grid) Map(f func(v int) int) *Grid {
	out := &Grid{
		data: make([]int, len(g.data)),
		rows: g.rows,
		cols: g.cols,
		rmin: g.rmin,
		rmax: g.rmax,
	}
	for i, v := range g.data {
		out.data[i] = f(v)
	}
	return out
}

// MaskWhere returns a mask marking every sample for which pred is true.
func (g *Grid) MaskWhere(pred func(v int) bool) Mask {
	m := NewMask(g.rows, g.cols)
	for i, v := range g.data {
		if pred(v) {
			m.bits[i] = true
		}
	}
	return m
}

// Rect is an inclusive bounding rectangle in grid coordinates.
type Rect struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

// Rows returns the height of the rectangle in pixels.
func (r Rect) Rows() int { return r.RowMax - r.RowMin + 1 }

// Cols returns the width of the rectangle in pixels.
func (r Rect) Cols() int { return r.ColMax - r.ColMin + 1 }

// String formats the rectangle as [rowMin..rowMax]x[colMin..colMax].
func (r Rect) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.RowMin, r.RowMax, r.ColMin, r.ColMax)
}
