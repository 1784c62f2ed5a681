package region

import "thighseg/pkg/imaging"

// 8-connected neighborhood for background traversal. Hole detection
// uses the connectivity rule complementary to the 4-connected
// foreground growth, so a diagonal chain of foreground pixels does not
// open a leak path for the background.
var neighbors8 = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// FillCavities returns a copy of the mask with every enclosed hole
// flipped to foreground. A hole is a background-connected component
// with no path to the image border.
//
// The implementation floods the background from all border pixels and
// then marks everything the flood could not reach. Filling an
// already-filled mask returns an identical mask.
//
// The pipeline uses this twice per thigh: to convert a bone boundary
// into a solid bone+marrow mask, and to close internal noncontractile
// spots inside the muscle envelope so they count as muscle area before
// being reclassified.
func FillCavities(m imaging.Mask) imaging.Mask {
	rows, cols := m.Rows(), m.Cols()
	reached := make([]bool, rows*cols)

	queue := make([][2]int, 0, 2*(rows+cols))
	enqueue := func(row, col int) {
		if m.At(row, col) || reached[row*cols+col] {
			return
		}
		reached[row*cols+col] = true
		queue = append(queue, [2]int{row, col})
	}

	for col := 0; col < cols; col++ {
		enqueue(0, col)
		enqueue(rows-1, col)
	}
	for row := 0; row < rows; row++ {
		enqueue(row, 0)
		enqueue(row, cols-1)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range neighbors8 {
			row, col := p[0]+d[0], p[1]+d[1]
			if row < 0 || row >= rows || col < 0 || col >= cols {
				continue
			}
			enqueue(row, col)
		}
	}

	out := imaging.NewMask(rows, cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			out.Set(row, col, m.At(row, col) || !reached[row*cols+col])
		}
	}
	return out
}
