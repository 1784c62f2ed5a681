// Package models defines the shared domain types for mid-thigh MRI
// segmentation: thigh sides, tissue classes, operator-supplied seed
// points, and the area records emitted into the study report.
package models

import "fmt"

// Side identifies which thigh an input or result belongs to. The two
// sides are fully independent processing units and never share mutable
// state.
type Side int

const (
	Left Side = iota
	Right
)

// String returns the lowercase side name used in reports and filenames.
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// TissueClass is one of the tissue categories delimited by the
// threshold pair or by operator-drawn muscle-group polygons.
type TissueClass int

const (
	// Bone covers the dense low-intensity class including marrow
	// after cavity filling.
	Bone TissueClass = iota

	// Muscle is the whole-muscle envelope minus bone and marrow.
	Muscle

	// Flexor is the subset of muscle inside the flexor-group polygon.
	Flexor

	// Extensor is the subset of muscle inside the extensor-group polygon.
	Extensor

	// Fat is the subcutaneous fat region grown from the fat seed.
	Fat

	// Noncontractile is fat-range-intensity tissue located inside the
	// muscle envelope, excluding bone and marrow.
	Noncontractile
)

// String returns the report label for the tissue class.
func (c TissueClass) String() string {
	switch c {
	case Bone:
		return "bone"
	case Muscle:
		return "muscle"
	case Flexor:
		return "flexor"
	case Extensor:
		return "extensor"
	case Fat:
		return "fat"
	case Noncontractile:
		return "noncontractile"
	default:
		return fmt.Sprintf("tissue(%d)", int(c))
	}
}

// Seed is an operator-supplied pixel coordinate anchoring a
// region-growing call. Coordinates are (row, column) in the cropped
// image space and must lie within the image bounds.
type Seed struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// String formats the seed as (row, col).
func (s Seed) String() string {
	return fmt.Sprintf("(%d, %d)", s.Row, s.Col)
}

// AreaUnit tags an area value with the unit it was measured in.
type AreaUnit string

const (
	// UnitSquareMM is the physical unit used when a pixel-spacing
	// factor is available from acquisition metadata.
	UnitSquareMM AreaUnit = "mm^2"

	// UnitPixelCount is the fallback unit when no pixel spacing is
	// available; the value is then a raw pixel count.
	UnitPixelCount AreaUnit = "px"
)

// AreaRecord is a single per-thigh, per-class area measurement. Records
// are produced once per segmentation pass and appended to the study
// report; they are never recomputed or mutated afterwards.
type AreaRecord struct {
	Class TissueClass
	Value float64
	Unit  AreaUnit
}

// String formats the record as "class: value unit".
func (a AreaRecord) String() string {
	return fmt.Sprintf("%s: %.2f %s", a.Class, a.Value, a.Unit)
}
