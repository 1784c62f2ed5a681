// Package segmentation orchestrates the per-thigh pixel-classification
// pipeline: background cropping, two-level thresholding, seeded region
// growing for each tissue class, cavity filling, mask algebra, polygon
// partitioning, and area quantification.
//
// The two thighs of an image share the crop, the threshold pair, and
// the quantifier but no mutable state, so they may be processed
// concurrently.
package segmentation

import (
	"fmt"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
	"thighseg/pkg/rasterize"
	"thighseg/pkg/region"
	"thighseg/pkg/threshold"
)

// Params configures the orchestration. These are deployment-level
// settings, not per-image inputs.
type Params struct {
	// Tolerance is the intensity tolerance for region growing. The
	// clinical protocol uses 1: only pixels within one intensity step
	// of the seed's value connect.
	Tolerance int

	// MuscleSeedCount is the number of muscle seeds supplied per
	// thigh. Two covers the bulk and one isolated island; deployments
	// may configure three or four.
	MuscleSeedCount int
}

// DefaultParams returns the standard clinical protocol parameters.
func DefaultParams() Params {
	return Params{Tolerance: 1, MuscleSeedCount: 2}
}

// Inputs carries the externally acquired seed coordinates for one
// thigh. All coordinates are in cropped-image space.
type Inputs struct {
	FatSeed     models.Seed
	BoneSeed    models.Seed
	MuscleSeeds []models.Seed
}

// ThighResult is the committed segmentation of one thigh. Once
// Finalize has produced the area records the masks are read-only; they
// feed only reporting and rendering.
type ThighResult struct {
	Side models.Side

	// Low and High are the threshold pair the masks were derived
	// under, recorded for downstream visualization.
	Low  int
	High int

	// CropBox is the foreground bounding box in the original image;
	// FatBox is the fat region's own bounding box in cropped space.
	CropBox imaging.Rect
	FatBox  imaging.Rect

	// Committed region masks, all in cropped-image space. Bone
	// includes marrow; Muscle excludes bone and marrow; Flexor and
	// Extensor are independent polygon partitions of Muscle.
	Fat            imaging.Mask
	Bone           imaging.Mask
	Muscle         imaging.Mask
	Flexor         imaging.Mask
	Extensor       imaging.Mask
	Noncontractile imaging.Mask

	// Areas holds the six per-class measurements, produced exactly
	// once by Finalize.
	Areas []models.AreaRecord
}

// Segmenter runs the pipeline for a single image. The crop and the
// threshold pair are computed once at construction and reused for both
// thighs; they are never recomputed mid-pipeline.
type Segmenter struct {
	cropped *imaging.Grid
	cropBox imaging.Rect
	low     int
	high    int
	params  Params
	quant   *Quantifier
}

// NewSegmenter crops the background from the image and computes the
// threshold pair. A blank image fails with imaging.ErrEmptyForeground.
func NewSegmenter(g *imaging.Grid, quant *Quantifier, params Params) (*Segmenter, error) {
	if params.Tolerance < 0 {
		return nil, fmt.Errorf("segmentation: negative tolerance %d", params.Tolerance)
	}
	if params.MuscleSeedCount < 1 {
		return nil, fmt.Errorf("segmentation: muscle seed count must be at least 1, got %d", params.MuscleSeedCount)
	}

	box, cropped, err := imaging.CropBackground(g)
	if err != nil {
		return nil, fmt.Errorf("cropping background: %w", err)
	}

	low, high, err := threshold.TwoLevel(cropped)
	if err != nil {
		return nil, fmt.Errorf("computing thresholds: %w", err)
	}

	return &Segmenter{
		cropped: cropped,
		cropBox: box,
		low:     low,
		high:    high,
		params:  params,
		quant:   quant,
	}, nil
}

// Cropped returns the cropped sub-image the seeds and polygons are
// expressed against.
func (s *Segmenter) Cropped() *imaging.Grid { return s.cropped }

// CropBox returns the foreground bounding box in original-image
// coordinates.
func (s *Segmenter) CropBox() imaging.Rect { return s.cropBox }

// Thresholds returns the (low, high) cut pair.
func (s *Segmenter) Thresholds() (low, high int) { return s.low, s.high }

// ProcessSide runs pipeline steps 1 through 6 for one thigh: fat and
// bone growth, bone cavity filling, muscle-candidate binarization,
// per-seed muscle growth and union, muscle cavity filling, bone
// subtraction, and noncontractile derivation. Flexor/extensor
// partitioning and area quantification follow separately so the
// polygon accept/retry loop can rerun without touching these masks.
func (s *Segmenter) ProcessSide(side models.Side, in Inputs) (*ThighResult, error) {
	if len(in.MuscleSeeds) != s.params.MuscleSeedCount {
		return nil, fmt.Errorf("segmentation: %s thigh needs %d muscle seeds, got %d",
			side, s.params.MuscleSeedCount, len(in.MuscleSeeds))
	}

	res := &ThighResult{
		Side:    side,
		Low:     s.low,
		High:    s.high,
		CropBox: s.cropBox,
	}

	// Step 1: subcutaneous fat, grown at tight tolerance on the
	// continuous-tone image.
	fat, err := s.growNonEmpty(s.cropped, models.Fat, in.FatSeed)
	if err != nil {
		return nil, err
	}
	res.Fat = fat
	if box, ok := fat.Bounds(); ok {
		res.FatBox = box
	}

	// Step 2: bone boundary, then cavity fill to absorb the marrow.
	boneRaw, err := s.growNonEmpty(s.cropped, models.Bone, in.BoneSeed)
	if err != nil {
		return nil, err
	}
	res.Bone = region.FillCavities(boneRaw)

	// Step 3: flatten the middle intensity class into a plateau so
	// growth below is connectivity-only.
	candidate := muscleCandidate(s.cropped, s.low, s.high)
	sentinel := candidate.Max()

	// Step 4: grow each supplied muscle seed independently and union
	// the components. Disconnected islands reached by distinct seeds
	// are all included; islands the operator never seeded are not.
	muscle := imaging.NewMask(s.cropped.Rows(), s.cropped.Cols())
	for _, seed := range in.MuscleSeeds {
		if !candidate.InBounds(seed.Row, seed.Col) {
			return nil, &region.SeedOutOfBoundsError{Seed: seed, Rows: candidate.Rows(), Cols: candidate.Cols()}
		}
		if candidate.At(seed.Row, seed.Col) != sentinel {
			return nil, &SeedBandError{Seed: seed, Value: s.cropped.At(seed.Row, seed.Col), Low: s.low, High: s.high}
		}
		grown, err := s.growNonEmpty(candidate, models.Muscle, seed)
		if err != nil {
			return nil, err
		}
		muscle = muscle.Union(grown)
	}

	// Step 5: close internal cavities, then remove bone and marrow.
	filled := region.FillCavities(muscle)
	res.Muscle = filled.Difference(res.Bone)

	// Step 6: fat-range intensities strictly inside the muscle
	// envelope are noncontractile tissue.
	high := s.high
	res.Noncontractile = res.Muscle.Intersect(s.cropped.MaskWhere(func(v int) bool {
		return v > high
	}))

	return res, nil
}

// PartitionMuscle computes the flexor and extensor subsets from the
// committed whole-muscle mask, applying each polygon independently.
// This is the non-interactive equivalent of proposing and immediately
// committing two PolygonSessions; interactive callers drive the
// sessions themselves and store the committed masks on the result.
func (s *Segmenter) PartitionMuscle(res *ThighResult, flexor, extensor rasterize.Polygon) error {
	flexMask, _, err := rasterize.Partition(res.Muscle, flexor)
	if err != nil {
		return fmt.Errorf("partitioning flexor group: %w", err)
	}
	extMask, _, err := rasterize.Partition(res.Muscle, extensor)
	if err != nil {
		return fmt.Errorf("partitioning extensor group: %w", err)
	}
	res.Flexor = flexMask
	res.Extensor = extMask
	return nil
}

// Finalize quantifies all six region areas. It must run exactly once
// per thigh, after the polygon partitions are committed; the result is
// complete afterwards and no mask is mutated again.
func (s *Segmenter) Finalize(res *ThighResult) error {
	if res.Areas != nil {
		return fmt.Errorf("segmentation: %s thigh already finalized", res.Side)
	}
	if res.Flexor.Rows() == 0 || res.Extensor.Rows() == 0 {
		return fmt.Errorf("segmentation: %s thigh finalized before both polygon partitions committed", res.Side)
	}

	res.Areas = []models.AreaRecord{
		s.quant.Quantify(models.Muscle, res.Muscle),
		s.quant.Quantify(models.Flexor, res.Flexor),
		s.quant.Quantify(models.Extensor, res.Extensor),
		s.quant.Quantify(models.Fat, res.Fat),
		s.quant.Quantify(models.Noncontractile, res.Noncontractile),
		s.quant.Quantify(models.Bone, res.Bone),
	}
	return nil
}

// SegmentSide runs the complete pipeline for one thigh in a single
// call: steps 1-6, both polygon partitions, and quantification. This is
// the non-interactive path used once seeds and polygons have already
// been accepted externally.
func (s *Segmenter) SegmentSide(side models.Side, in Inputs, flexor, extensor rasterize.Polygon) (*ThighResult, error) {
	res, err := s.ProcessSide(side, in)
	if err != nil {
		return nil, err
	}
	if err := s.PartitionMuscle(res, flexor, extensor); err != nil {
		return nil, err
	}
	if err := s.Finalize(res); err != nil {
		return nil, err
	}
	return res, nil
}

// growNonEmpty grows a region and surfaces a zero-area result as the
// retryable EmptyRegionError.
func (s *Segmenter) growNonEmpty(g *imaging.Grid, class models.TissueClass, seed models.Seed) (imaging.Mask, error) {
	mask, err := region.Grow(g, seed, s.params.Tolerance)
	if err != nil {
		return imaging.Mask{}, fmt.Errorf("growing %s region: %w", class, err)
	}
	if mask.Count() == 0 {
		return imaging.Mask{}, &EmptyRegionError{Class: class, Seed: seed}
	}
	return mask, nil
}
