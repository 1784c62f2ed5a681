package segmentation

import (
	"log"
	"sync"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
)

// Quantifier converts pixel counts into physical areas using the
// pixel-spacing factor from the acquisition metadata (area per pixel,
// mm^2). When the factor is unavailable the quantifier falls back to
// raw pixel counts and warns exactly once per image, no matter how many
// regions are measured or from which thigh goroutine.
type Quantifier struct {
	spacing float64
	warn    sync.Once
	logf    func(format string, args ...any)
}

// NewQuantifier builds a quantifier for one image. A spacing factor of
// zero (or below) means the metadata carried no pixel spacing. logf
// receives the single fallback warning; nil uses the standard logger.
func NewQuantifier(spacing float64, logf func(format string, args ...any)) *Quantifier {
	if logf == nil {
		logf = log.Printf
	}
	return &Quantifier{spacing: spacing, logf: logf}
}

// Physical reports whether areas are produced in physical units.
func (q *Quantifier) Physical() bool { return q.spacing > 0 }

// Quantify measures a mask as an area record for the given tissue
// class.
func (q *Quantifier) Quantify(class models.TissueClass, m imaging.Mask) models.AreaRecord {
	count := m.Count()
	if q.spacing > 0 {
		return models.AreaRecord{
			Class: class,
			Value: float64(count) * q.spacing,
			Unit:  models.UnitSquareMM,
		}
	}

	q.warn.Do(func() {
		q.logf("Warning: no pixel spacing available; reporting areas as raw pixel counts")
	})
	return models.AreaRecord{
		Class: class,
		Value: float64(count),
		Unit:  models.UnitPixelCount,
	}
}
