package region

import (
	"errors"
	"testing"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
)

func buildGrid(t *testing.T, rows [][]int) *imaging.Grid {
	t.Helper()
	data := make([]int, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		data = append(data, r...)
	}
	g, err := imaging.NewGrid(data, len(rows), len(rows[0]))
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func buildMask(t *testing.T, rows [][]int) imaging.Mask {
	t.Helper()
	m := imaging.NewMask(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, v := range row {
			if v != 0 {
				m.Set(r, c, true)
			}
		}
	}
	return m
}

func TestGrowSeedOutOfBounds(t *testing.T) {
	g := buildGrid(t, [][]int{{1, 2}, {3, 4}})

	_, err := Grow(g, models.Seed{Row: 5, Col: 0}, 1)
	var oob *SeedOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("got %v, want SeedOutOfBoundsError", err)
	}
	if oob.Seed.Row != 5 {
		t.Errorf("error seed row = %d, want 5", oob.Seed.Row)
	}
}

func TestGrowToleranceRelativeToSeed(t *testing.T) {
	// Values climb 5, 6, 7: the 6 is within tolerance of the seed, the
	// 7 is not even though it borders the 6. Tolerance is measured from
	// the seed, not the frontier.
	g := buildGrid(t, [][]int{{5, 6, 7}})

	mask, err := Grow(g, models.Seed{Row: 0, Col: 0}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if !mask.At(0, 0) || !mask.At(0, 1) {
		t.Error("pixels within tolerance of the seed must be included")
	}
	if mask.At(0, 2) {
		t.Error("pixel beyond tolerance of the seed must be excluded")
	}
}

func TestGrowIsFourConnected(t *testing.T) {
	// Two equal-valued pixels touch only diagonally; they must not
	// join.
	g := buildGrid(t, [][]int{
		{9, 0},
		{0, 9},
	})

	mask, err := Grow(g, models.Seed{Row: 0, Col: 0}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if mask.Count() != 1 || !mask.At(0, 0) {
		t.Errorf("diagonal neighbor must not connect, got %d pixels", mask.Count())
	}
}

func TestGrowBlockedByFrontier(t *testing.T) {
	// A wall of out-of-tolerance pixels must stop propagation even
	// though matching pixels lie beyond it.
	g := buildGrid(t, [][]int{
		{5, 5, 90, 5},
	})

	mask, err := Grow(g, models.Seed{Row: 0, Col: 0}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if mask.At(0, 3) {
		t.Error("pixel behind a blocking frontier must be excluded")
	}
	if mask.Count() != 2 {
		t.Errorf("component size = %d, want 2", mask.Count())
	}
}

func TestGrowBackgroundSeedOwnComponent(t *testing.T) {
	// Seeding on a background-valued pixel grows only that pixel's own
	// connected component, not every background pixel in the image.
	g := buildGrid(t, [][]int{
		{0, 7, 0},
		{7, 7, 7},
		{0, 7, 0},
	})

	mask, err := Grow(g, models.Seed{Row: 0, Col: 0}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if mask.Count() != 1 || !mask.At(0, 0) {
		t.Errorf("background seed grew %d pixels, want only its own corner", mask.Count())
	}
}

func TestGrowPlateauSpansImage(t *testing.T) {
	// An intensity plateau spanning the full image belongs to one
	// component.
	g := buildGrid(t, [][]int{
		{4, 4, 4},
		{4, 4, 4},
	})

	mask, err := Grow(g, models.Seed{Row: 1, Col: 2}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if mask.Count() != 6 {
		t.Errorf("plateau component = %d pixels, want 6", mask.Count())
	}
}

func TestGrowIdempotentUnderReseeding(t *testing.T) {
	g := buildGrid(t, [][]int{
		{9, 9, 0, 5},
		{0, 9, 0, 5},
		{9, 9, 0, 0},
	})

	first, err := Grow(g, models.Seed{Row: 0, Col: 0}, 1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}

	// Every pixel of the component, used as a new seed, must reproduce
	// exactly the same mask.
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if !first.At(row, col) {
				continue
			}
			again, err := Grow(g, models.Seed{Row: row, Col: col}, 1)
			if err != nil {
				t.Fatalf("Grow from (%d,%d) failed: %v", row, col, err)
			}
			if !again.Equal(first) {
				t.Fatalf("reseeding at (%d,%d) produced a different mask", row, col)
			}
		}
	}
}

func TestFillCavitiesFillsEnclosedHole(t *testing.T) {
	ring := buildMask(t, [][]int{
		{0, 1, 1, 1, 0},
		{0, 1, 0, 1, 0},
		{0, 1, 1, 1, 0},
	})

	filled := FillCavities(ring)
	if !filled.At(1, 2) {
		t.Error("enclosed hole must be filled")
	}
	if filled.Count() != ring.Count()+1 {
		t.Errorf("filled count = %d, want %d", filled.Count(), ring.Count()+1)
	}
	if filled.At(0, 0) || filled.At(2, 4) {
		t.Error("border-connected background must stay background")
	}
}

func TestFillCavitiesIdempotent(t *testing.T) {
	ring := buildMask(t, [][]int{
		{1, 1, 1},
		{1, 0, 1},
		{1, 1, 1},
	})

	once := FillCavities(ring)
	twice := FillCavities(once)
	if !twice.Equal(once) {
		t.Error("filling an already-filled mask must change nothing")
	}
}

func TestFillCavitiesOpenBayNotFilled(t *testing.T) {
	// The pocket is open to the border; it is a bay, not a hole.
	bay := buildMask(t, [][]int{
		{1, 0, 1},
		{1, 0, 1},
		{1, 1, 1},
	})

	filled := FillCavities(bay)
	if !filled.Equal(bay) {
		t.Error("background with a path to the border must not be filled")
	}
}

func TestFillCavitiesDiagonalGapLeaks(t *testing.T) {
	// The center pixel is surrounded by a 4-connected diamond, but the
	// background escapes through the diagonal gaps: hole detection uses
	// 8-connectivity for the background, complementary to the
	// 4-connected growth rule.
	diamond := buildMask(t, [][]int{
		{0, 1, 0},
		{1, 0, 1},
		{0, 1, 0},
	})

	filled := FillCavities(diamond)
	if filled.At(1, 1) {
		t.Error("center escapes diagonally and must not be filled")
	}
	if !filled.Equal(diamond) {
		t.Error("mask must be unchanged")
	}
}
