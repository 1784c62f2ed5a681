package visualization

import (
	"os"
	"path/filepath"
	"testing"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
	"thighseg/pkg/segmentation"
)

func testGrid(t *testing.T) *imaging.Grid {
	t.Helper()
	g, err := imaging.NewGrid([]int{
		0, 100, 200,
		0, 100, 200,
	}, 2, 3)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func TestGridImageStretchesRange(t *testing.T) {
	r := NewRenderer(testGrid(t))
	img := r.GridImage()

	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("image bounds %v, want 3x2", img.Bounds())
	}
	if img.Gray16At(0, 0).Y != 0 {
		t.Errorf("minimum intensity must map to 0, got %d", img.Gray16At(0, 0).Y)
	}
	if img.Gray16At(2, 0).Y != 65535 {
		t.Errorf("maximum intensity must map to 65535, got %d", img.Gray16At(2, 0).Y)
	}
}

func TestMaskOverlayTintsOnlyMaskedPixels(t *testing.T) {
	r := NewRenderer(testGrid(t))

	m := imaging.NewMask(2, 3)
	m.Set(0, 1, true)

	img := r.MaskOverlay(m, classTints[models.Muscle])

	tinted := img.NRGBAAt(1, 0)
	plain := img.NRGBAAt(1, 1)
	if tinted.R == plain.R && tinted.G == plain.G && tinted.B == plain.B {
		t.Error("masked pixel must differ from the unmasked pixel below it")
	}
	if plain.R != plain.G || plain.G != plain.B {
		t.Error("unmasked pixels must stay gray")
	}
}

func TestSaveResultOverlays(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(testGrid(t))

	m := imaging.NewMask(2, 3)
	m.Set(0, 0, true)
	res := &segmentation.ThighResult{
		Side:   models.Left,
		Fat:    m,
		Bone:   m,
		Muscle: m,
	}

	if err := r.SaveResultOverlays(res, dir); err != nil {
		t.Fatalf("SaveResultOverlays failed: %v", err)
	}

	for _, name := range []string{"cropped.png", "left_muscle.png", "left_fat.png", "left_bone.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	// Uncommitted masks (flexor/extensor here) are skipped, not
	// rendered empty.
	if _, err := os.Stat(filepath.Join(dir, "left_flexor.png")); !os.IsNotExist(err) {
		t.Error("overlay for an absent mask must not be written")
	}
}
