// Package visualization renders segmentation results for review:
// grayscale exports of the cropped slice and tinted overlays of each
// committed tissue mask. It sits outside the core pipeline and only
// reads committed values.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
	"thighseg/pkg/segmentation"
)

// Tints used for the per-class overlays. Chosen for contrast against
// the grayscale anatomy.
var classTints = map[models.TissueClass]color.NRGBA{
	models.Bone:           {R: 66, G: 135, B: 245, A: 255},
	models.Muscle:         {R: 220, G: 60, B: 60, A: 255},
	models.Flexor:         {R: 245, G: 160, B: 30, A: 255},
	models.Extensor:       {R: 150, G: 75, B: 210, A: 255},
	models.Fat:            {R: 240, G: 220, B: 70, A: 255},
	models.Noncontractile: {R: 60, G: 200, B: 150, A: 255},
}

// Renderer converts grids and masks into reviewable images.
type Renderer struct {
	grid *imaging.Grid
}

// NewRenderer creates a renderer over the cropped slice the masks are
// expressed against.
func NewRenderer(grid *imaging.Grid) *Renderer {
	return &Renderer{grid: grid}
}

// GridImage renders the slice as 16-bit grayscale, stretching the
// observed intensity range to the full output range.
func (r *Renderer) GridImage() *image.Gray16 {
	rows, cols := r.grid.Rows(), r.grid.Cols()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	span := r.grid.Max() - r.grid.Min()
	if span == 0 {
		span = 1
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v := (r.grid.At(row, col) - r.grid.Min()) * 65535 / span
			img.SetGray16(col, row, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// MaskOverlay renders the slice with the mask blended on top in the
// given tint at half opacity.
func (r *Renderer) MaskOverlay(m imaging.Mask, tint color.NRGBA) *image.NRGBA {
	rows, cols := r.grid.Rows(), r.grid.Cols()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	span := r.grid.Max() - r.grid.Min()
	if span == 0 {
		span = 1
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			gray := uint8((r.grid.At(row, col) - r.grid.Min()) * 255 / span)
			c := color.NRGBA{R: gray, G: gray, B: gray, A: 255}
			if m.At(row, col) {
				c.R = uint8((int(c.R) + int(tint.R)) / 2)
				c.G = uint8((int(c.G) + int(tint.G)) / 2)
				c.B = uint8((int(c.B) + int(tint.B)) / 2)
			}
			img.SetNRGBA(col, row, c)
		}
	}
	return img
}

// SavePNG writes an image to disk as PNG.
func SavePNG(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveResultOverlays writes one overlay per committed mask of a thigh
// result into outputDir, plus the plain cropped slice, named
// side_class.png.
func (r *Renderer) SaveResultOverlays(res *segmentation.ThighResult, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	if err := SavePNG(r.GridImage(), filepath.Join(outputDir, "cropped.png")); err != nil {
		return err
	}

	masks := map[models.TissueClass]imaging.Mask{
		models.Bone:           res.Bone,
		models.Muscle:         res.Muscle,
		models.Flexor:         res.Flexor,
		models.Extensor:       res.Extensor,
		models.Fat:            res.Fat,
		models.Noncontractile: res.Noncontractile,
	}
	for class, mask := range masks {
		if mask.Rows() == 0 {
			continue
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", res.Side, class))
		if err := SavePNG(r.MaskOverlay(mask, classTints[class]), filename); err != nil {
			return fmt.Errorf("saving %s overlay: %w", class, err)
		}
	}
	return nil
}
