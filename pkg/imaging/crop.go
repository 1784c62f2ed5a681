package imaging

import "errors"

// ErrEmptyForeground is returned by CropBackground when no pixel rises
// above the background sentinel, i.e. the image is blank.
var ErrEmptyForeground = errors.New("imaging: no foreground pixels above background level")

// CropBackground removes zero-valued border rows and columns around the
// anatomy. It returns the minimal bounding rectangle containing every
// pixel whose value exceeds background+1, where background is the
// observed minimum of the image, together with the cropped sub-grid.
//
// The crop is purely geometric: interior background pixels inside the
// rectangle are untouched. A fully blank image yields
// ErrEmptyForeground.
func CropBackground(g *Grid) (Rect, *Grid, error) {
	threshold := g.Min() + 1

	r := Rect{RowMin: g.Rows(), RowMax: -1, ColMin: g.Cols(), ColMax: -1}
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if g.At(row, col) <= threshold {
				continue
			}
			if row < r.RowMin {
				r.RowMin = row
			}
			if row > r.RowMax {
				r.RowMax = row
			}
			if col < r.ColMin {
				r.ColMin = col
			}
			if col > r.ColMax {
				r.ColMax = col
			}
		}
	}

	if r.RowMax < 0 {
		return Rect{}, nil, ErrEmptyForeground
	}

	cropped, err := g.SubGrid(r)
	if err != nil {
		return Rect{}, nil, err
	}
	return r, cropped, nil
}
