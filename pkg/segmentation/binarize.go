package segmentation

import "thighseg/pkg/imaging"

// muscleCandidate derives the binarized muscle-candidate image from the
// cropped slice: every pixel in the middle intensity class (low, high)
// is forced to the fat sentinel (the image maximum), and every other
// pixel — fat class and dense class alike — is set to the background
// sentinel (the image minimum).
//
// The result is a flat plateau over candidate muscle territory, so that
// region growing with the usual tight tolerance degenerates into
// connectivity-only growth within the muscle intensity band.
func muscleCandidate(g *imaging.Grid, low, high int) *imaging.Grid {
	sentinel := g.Max()
	background := g.Min()
	return g.Map(func(v int) int {
		if v > low && v < high {
			return sentinel
		}
		return background
	})
}
