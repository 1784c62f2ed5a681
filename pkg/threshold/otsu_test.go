package threshold

import (
	"math"
	"testing"

	"thighseg/pkg/imaging"
)

// gridOf builds a single-row grid repeating each value count times.
func gridOf(t *testing.T, counts map[int]int) *imaging.Grid {
	t.Helper()
	var data []int
	// Deterministic order: ascending values.
	for v := minKey(counts); v <= maxKey(counts); v++ {
		for i := 0; i < counts[v]; i++ {
			data = append(data, v)
		}
	}
	g, err := imaging.NewGrid(data, 1, len(data))
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func minKey(m map[int]int) int {
	first := true
	min := 0
	for k := range m {
		if first || k < min {
			min = k
			first = false
		}
	}
	return min
}

func maxKey(m map[int]int) int {
	first := true
	max := 0
	for k := range m {
		if first || k > max {
			max = k
			first = false
		}
	}
	return max
}

func TestTwoLevelFlatImage(t *testing.T) {
	g := gridOf(t, map[int]int{42: 9})
	low, high, err := TwoLevel(g)
	if err != nil {
		t.Fatalf("TwoLevel failed: %v", err)
	}
	if low != 42 || high != 42 {
		t.Errorf("flat image thresholds = (%d, %d), want (42, 42)", low, high)
	}
}

func TestTwoLevelTrimodal(t *testing.T) {
	// Three well-separated single-valued bands: background/dense at 0
	// and 10, muscle at 100, fat at 200. The optimal pair must isolate
	// each band.
	g := gridOf(t, map[int]int{0: 270, 10: 80, 100: 370, 200: 365})

	low, high, err := TwoLevel(g)
	if err != nil {
		t.Fatalf("TwoLevel failed: %v", err)
	}

	if low < 10 || low >= 100 {
		t.Errorf("low = %d, want within [10, 100)", low)
	}
	if high <= 100 || high > 200 {
		t.Errorf("high = %d, want within (100, 200]", high)
	}
}

func TestTwoLevelOrderingAndRange(t *testing.T) {
	g := gridOf(t, map[int]int{3: 5, 17: 2, 21: 9, 44: 4, 90: 1})

	low, high, err := TwoLevel(g)
	if err != nil {
		t.Fatalf("TwoLevel failed: %v", err)
	}
	if low > high {
		t.Errorf("low %d > high %d", low, high)
	}
	if low < g.Min() || high > g.Max() {
		t.Errorf("thresholds (%d, %d) outside range [%d, %d]", low, high, g.Min(), g.Max())
	}
}

func TestTwoLevelDeterministic(t *testing.T) {
	g := gridOf(t, map[int]int{5: 7, 9: 7, 60: 14, 61: 3, 200: 7})

	low1, high1, err := TwoLevel(g)
	if err != nil {
		t.Fatalf("TwoLevel failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		low2, high2, err := TwoLevel(g)
		if err != nil {
			t.Fatalf("TwoLevel failed: %v", err)
		}
		if low1 != low2 || high1 != high2 {
			t.Fatalf("thresholds changed between runs: (%d,%d) vs (%d,%d)", low1, high1, low2, high2)
		}
	}
}

func TestTwoLevelBimodalSeparation(t *testing.T) {
	// Two well-separated clusters. A two-level thresholder must not
	// merge them into a single class: the cluster extremes have to land
	// in different classes of the induced partition.
	g := gridOf(t, map[int]int{40: 50, 60: 50, 200: 100})

	low, high, err := TwoLevel(g)
	if err != nil {
		t.Fatalf("TwoLevel failed: %v", err)
	}

	classify := func(v int) int {
		switch {
		case v <= low:
			return 0
		case v >= high && high > low:
			return 2
		default:
			return 1
		}
	}
	if classify(60) == classify(200) {
		t.Errorf("thresholds (%d, %d) merge the two clusters into one class", low, high)
	}
}

func TestHistogramClasses(t *testing.T) {
	g := gridOf(t, map[int]int{0: 10, 100: 20, 200: 10})
	h := NewHistogram(g)

	classes := h.Classes(0, 200)

	totalWeight := classes[0].Weight + classes[1].Weight + classes[2].Weight
	if math.Abs(totalWeight-1.0) > 1e-12 {
		t.Errorf("class weights sum to %f, want 1", totalWeight)
	}
	if classes[1].Mean != 100 {
		t.Errorf("middle class mean = %f, want 100", classes[1].Mean)
	}
	if math.Abs(classes[0].Weight-0.25) > 1e-12 {
		t.Errorf("low class weight = %f, want 0.25", classes[0].Weight)
	}
}

func TestHistogramMean(t *testing.T) {
	g := gridOf(t, map[int]int{10: 1, 30: 3})
	h := NewHistogram(g)
	if mean := h.Mean(); math.Abs(mean-25) > 1e-12 {
		t.Errorf("mean = %f, want 25", mean)
	}
}
