package imaging

import "fmt"

// Mask is a boolean grid with the same shape as the source image; true
// marks pixels belonging to a region. Masks are combined with the
// algebra below and every operation returns a fresh value — a mask is
// never mutated in place once it has been handed to a consumer, which
// keeps multi-mask derivations from a shared source order-independent.
type Mask struct {
	bits []bool
	rows int
	cols int
}

// NewMask returns an all-false mask of the given shape.
func NewMask(rows, cols int) Mask {
	return Mask{bits: make([]bool, rows*cols), rows: rows, cols: cols}
}

// Rows returns the number of rows in the mask.
func (m Mask) Rows() int { return m.rows }

// Cols returns the number of columns in the mask.
func (m Mask) Cols() int { return m.cols }

// At reports whether (row, col) is part of the region.
func (m Mask) At(row, col int) bool {
	return m.bits[row*m.cols+col]
}

// Set marks or clears a pixel. Set is only used while a mask is being
// built; committed masks are read-only by convention.
func (m Mask) Set(row, col int, v bool) {
	m.bits[row*m.cols+col] = v
}

// Count returns the number of true pixels, the raw input to area
// quantification.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the mask.
func (m Mask) Clone() Mask {
	out := NewMask(m.rows, m.cols)
	copy(out.bits, m.bits)
	return out
}

// Union returns a new mask containing every pixel set in either mask.
func (m Mask) Union(other Mask) Mask {
	m.mustMatch(other)
	out := m.Clone()
	for i, b := range other.bits {
		if b {
			out.bits[i] = true
		}
	}
	return out
}

// Intersect returns a new mask containing the pixels set in both masks.
func (m Mask) Intersect(other Mask) Mask {
	m.mustMatch(other)
	out := NewMask(m.rows, m.cols)
	for i, b := range m.bits {
		out.bits[i] = b && other.bits[i]
	}
	return out
}

// Difference returns a new mask containing the pixels set in m but not
// in other.
func (m Mask) Difference(other Mask) Mask {
	m.mustMatch(other)
	out := NewMask(m.rows, m.cols)
	for i, b := range m.bits {
		out.bits[i] = b && !other.bits[i]
	}
	return out
}

// SubsetOf reports whether every pixel of m is also set in other.
func (m Mask) SubsetOf(other Mask) bool {
	m.mustMatch(other)
	for i, b := range m.bits {
		if b && !other.bits[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both masks mark exactly the same pixels.
func (m Mask) Equal(other Mask) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, b := range m.bits {
		if b != other.bits[i] {
			return false
		}
	}
	return true
}

// Bounds returns the minimal rectangle enclosing all true pixels. The
// second return value is false for an empty mask.
func (m Mask) Bounds() (Rect, bool) {
	r := Rect{RowMin: m.rows, RowMax: -1, ColMin: m.cols, ColMax: -1}
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if !m.bits[row*m.cols+col] {
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
		return Rect{}, false
	}
	return r, true
}

func (m Mask) mustMatch(other Mask) {
	if m.rows != other.rows || m.cols != other.cols {
		panic(fmt.Sprintf("mask shape mismatch: %dx%d vs %dx%d", m.rows, m.cols, other.rows, other.cols))
	}
}
