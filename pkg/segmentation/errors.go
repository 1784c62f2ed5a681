package segmentation

import (
	"fmt"

	"thighseg/internal/models"
)

// EmptyRegionError reports a grown region with zero pixels: a malformed
// seed or broken connectivity. It is retryable — the caller may supply
// a new seed and rerun only the affected grow, without recomputing the
// crop or the thresholds.
type EmptyRegionError struct {
	Class models.TissueClass
	Seed  models.Seed
}

func (e *EmptyRegionError) Error() string {
	return fmt.Sprintf("segmentation: %s region grown from seed %s is empty", e.Class, e.Seed)
}

// SeedBandError reports a muscle seed placed on a pixel outside the
// muscle intensity band (low, high). Growing from such a seed would
// flood the flattened background plateau instead of muscle tissue, so
// the seed is rejected as a retryable input error.
type SeedBandError struct {
	Seed  models.Seed
	Value int
	Low   int
	High  int
}

func (e *SeedBandError) Error() string {
	return fmt.Sprintf("segmentation: muscle seed %s has intensity %d outside band (%d, %d)",
		e.Seed, e.Value, e.Low, e.High)
}
