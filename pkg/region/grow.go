// Package region implements the connectivity operations of the
// segmentation engine: seeded region growing under an intensity
// tolerance and morphological cavity filling of binary masks.
package region

import (
	"fmt"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
)

// SeedOutOfBoundsError is returned when a supplied seed coordinate lies
// outside the image. It is a retryable input error: the caller may
// acquire a new seed and grow again without rerunning earlier pipeline
// stages.
type SeedOutOfBoundsError struct {
	Seed models.Seed
	Rows int
	Cols int
}

func (e *SeedOutOfBoundsError) Error() string {
	return fmt.Sprintf("region: seed %s outside %dx%d image", e.Seed, e.Rows, e.Cols)
}

// 4-connected neighborhood. Diagonal adjacency intentionally does not
// propagate growth.
var neighbors4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Grow returns the maximal 4-connected component of pixels containing
// the seed such that every included pixel's intensity differs from the
// seed's by at most tolerance. Pixels failing the tolerance test are
// excluded and block propagation past them.
//
// The traversal is breadth-first over a visited set, so each pixel is
// examined at most once and the cost is linear in the image size. A
// seed placed on a background-valued pixel grows only that pixel's own
// connected component, never the whole background.
//
// The pipeline calls Grow in two modes: on the continuous-tone cropped
// image with tolerance 1 for fat and bone (near-identical intensities),
// and on the binarized muscle-candidate plateau where tolerance 1
// degenerates into connectivity-only growth within the muscle band.
func Grow(g *imaging.Grid, seed models.Seed, tolerance int) (imaging.Mask, error) {
	if !g.InBounds(seed.Row, seed.Col) {
		return imaging.Mask{}, &SeedOutOfBoundsError{Seed: seed, Rows: g.Rows(), Cols: g.Cols()}
	}

	mask := imaging.NewMask(g.Rows(), g.Cols())
	visited := make([]bool, g.Rows()*g.Cols())
	seedVal := g.At(seed.Row, seed.Col)

	queue := make([]models.Seed, 0, 256)
	queue = append(queue, seed)
	visited[seed.Row*g.Cols()+seed.Col] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		mask.Set(p.Row, p.Col, true)

		for _, d := range neighbors4 {
			row, col := p.Row+d[0], p.Col+d[1]
			if !g.InBounds(row, col) {
				continue
			}
			idx := row*g.Cols() + col
			if visited[idx] {
				continue
			}
			visited[idx] = true

			diff := g.At(row, col) - seedVal
			if diff < 0 {
				diff = -diff
			}
			if diff > tolerance {
				continue
			}
			queue = append(queue, models.Seed{Row: row, Col: col})
		}
	}

	return mask, nil
}
