// Package threshold computes the two separating intensity levels that
// partition a cropped MRI slice into bone, muscle-candidate, and fat
// classes. The cut points are chosen by the multi-level Otsu criterion:
// maximize the between-class variance of the three classes induced by
// the pair.
package threshold

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"thighseg/pkg/imaging"
)

// Histogram holds the distinct intensity levels of a grid in ascending
// order together with their pixel counts. MRI exports carry at most a
// few thousand distinct levels, so candidate threshold pairs can be
// enumerated directly over the level list.
type Histogram struct {
	Levels []int
	Counts []int

	total int
}

// NewHistogram tallies the samples of a grid.
func NewHistogram(g *imaging.Grid) *Histogram {
	counts := make(map[int]int)
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			counts[g.At(row, col)]++
		}
	}

	h := &Histogram{
		Levels: make([]int, 0, len(counts)),
		Counts: make([]int, 0, len(counts)),
	}
	min, max := g.Min(), g.Max()
	for v := min; v <= max; v++ {
		if n, ok := counts[v]; ok {
			h.Levels = append(h.Levels, v)
			h.Counts = append(h.Counts, n)
			h.total += n
		}
	}
	return h
}

// Total returns the number of samples tallied.
func (h *Histogram) Total() int { return h.total }

// Mean returns the mean intensity of the histogram, weighted by the
// pixel counts.
func (h *Histogram) Mean() float64 {
	vals := make([]float64, len(h.Levels))
	weights := make([]float64, len(h.Levels))
	for i := range h.Levels {
		vals[i] = float64(h.Levels[i])
		weights[i] = float64(h.Counts[i])
	}
	return stat.Mean(vals, weights)
}

// TwoLevel computes the threshold pair (low, high), low <= high, that
// maximizes the between-class variance of the three classes
//
//	{v <= low}, {low < v < high}, {v >= high}
//
// over the histogram of g. The result is deterministic: ties are broken
// by the lexicographically smallest qualifying pair. Both cut points
// are observed intensity levels, so rmin <= low <= high <= rmax always
// holds.
//
// The search enumerates ordered pairs of distinct levels using prefix
// sums, costing O(L^2) for L distinct levels; L is bounded by the
// intensity depth of the acquisition, not the pixel count.
func TwoLevel(g *imaging.Grid) (low, high int, err error) {
	h := NewHistogram(g)
	return h.TwoLevel()
}

// TwoLevel runs the cut-point search on an existing histogram.
func (h *Histogram) TwoLevel() (low, high int, err error) {
	n := len(h.Levels)
	if n == 0 {
		return 0, 0, fmt.Errorf("threshold: empty histogram")
	}
	if n == 1 {
		// A flat image has a single admissible pair.
		return h.Levels[0], h.Levels[0], nil
	}

	// Prefix sums of counts and count-weighted intensities. prefixN[i]
	// covers levels [0, i), so class sums reduce to two subtractions
	// per candidate pair.
	prefixN := make([]float64, n+1)
	prefixS := make([]float64, n+1)
	for i := 0; i < n; i++ {
		prefixN[i+1] = prefixN[i] + float64(h.Counts[i])
		prefixS[i+1] = prefixS[i] + float64(h.Counts[i])*float64(h.Levels[i])
	}
	totalN := prefixN[n]
	sumAll := prefixS[n]
	totalMean := sumAll / totalN

	bestVar := -1.0
	bestLow, bestHigh := 0, 0

	// Class 1 is levels [0..i], class 3 is levels [j..n-1], class 2 is
	// the open band between them. j == i leaves class 3 empty and is
	// admissible (low == high).
	for i := 0; i < n; i++ {
		n1 := prefixN[i+1]
		s1 := prefixS[i+1]
		for j := i; j < n; j++ {
			var n3, s3 float64
			if j > i {
				n3 = totalN - prefixN[j]
				s3 = sumAll - prefixS[j]
			}
			n2 := totalN - n1 - n3
			s2 := sumAll - s1 - s3

			v := 0.0
			if n1 > 0 {
				d := s1/n1 - totalMean
				v += n1 * d * d
			}
			if n2 > 0 {
				d := s2/n2 - totalMean
				v += n2 * d * d
			}
			if n3 > 0 {
				d := s3/n3 - totalMean
				v += n3 * d * d
			}

			// Strict improvement keeps the first (smallest) pair on ties.
			if v > bestVar {
				bestVar = v
				bestLow = h.Levels[i]
				bestHigh = h.Levels[j]
			}
		}
	}

	return bestLow, bestHigh, nil
}

// ClassStats describes one of the three intensity classes induced by a
// threshold pair: its pixel weight (fraction of the image) and its mean
// intensity. Used for reporting alongside the area measurements.
type ClassStats struct {
	Weight float64
	Mean   float64
}

// Classes computes the per-class statistics of the histogram under the
// given cut pair.
func (h *Histogram) Classes(low, high int) [3]ClassStats {
	var vals, weights [3][]float64
	for i, level := range h.Levels {
		k := 1
		switch {
		case level <= low:
			k = 0
		case level >= high && high > low:
			k = 2
		}
		vals[k] = append(vals[k], float64(level))
		weights[k] = append(weights[k], float64(h.Counts[i]))
	}

	var out [3]ClassStats
	for k := 0; k < 3; k++ {
		if len(vals[k]) == 0 {
			continue
		}
		sum := 0.0
		for _, w := range weights[k] {
			sum += w
		}
		out[k] = ClassStats{
			Weight: sum / float64(h.total),
			Mean:   stat.Mean(vals[k], weights[k]),
		}
	}
	return out
}
