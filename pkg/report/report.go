// Package report assembles the per-image study record: six area values
// per thigh, the threshold pair, the crop bounding boxes, and
// supplementary per-region intensity statistics. A record is emitted
// whole or not at all — there is no partial record.
package report

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"thighseg/internal/models"
	"thighseg/pkg/imaging"
	"thighseg/pkg/segmentation"
)

// RegionStats summarizes the intensity distribution under a mask.
type RegionStats struct {
	Pixels int
	Mean   float64
	StdDev float64
}

// IntensityStats computes the mean and standard deviation of the grid
// samples covered by the mask. An empty mask yields zero statistics.
func IntensityStats(g *imaging.Grid, m imaging.Mask) RegionStats {
	samples := make([]float64, 0, m.Count())
	for row := 0; row < m.Rows(); row++ {
		for col := 0; col < m.Cols(); col++ {
			if m.At(row, col) {
				samples = append(samples, float64(g.At(row, col)))
			}
		}
	}
	if len(samples) == 0 {
		return RegionStats{}
	}

	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) == 1 {
		std = 0
	}
	return RegionStats{Pixels: len(samples), Mean: mean, StdDev: std}
}

// ThighRecord is the reported portion of one thigh's segmentation.
type ThighRecord struct {
	Side    models.Side
	Low     int
	High    int
	CropBox imaging.Rect
	FatBox  imaging.Rect
	Areas   []models.AreaRecord
	Stats   map[models.TissueClass]RegionStats
}

// StudyRecord is the complete per-image report handed to the external
// persistence sink.
type StudyRecord struct {
	Subject string
	Date    string
	Left    ThighRecord
	Right   ThighRecord
}

// Builder collects the two thigh results of one image. Build refuses to
// emit until both sides are present and finalized, which enforces the
// all-or-nothing record contract even when the thighs were processed
// concurrently.
type Builder struct {
	subject string
	date    string
	grid    *imaging.Grid
	sides   map[models.Side]*segmentation.ThighResult
}

// NewBuilder starts a record for one subject and acquisition date. The
// grid is the cropped image the masks are expressed against; it is only
// read, never modified.
func NewBuilder(subject, date string, grid *imaging.Grid) *Builder {
	return &Builder{
		subject: subject,
		date:    date,
		grid:    grid,
		sides:   map[models.Side]*segmentation.ThighResult{},
	}
}

// Add registers a finalized thigh result. Adding the same side twice or
// an unfinalized result is an error.
func (b *Builder) Add(res *segmentation.ThighResult) error {
	if res.Areas == nil {
		return fmt.Errorf("report: %s thigh result is not finalized", res.Side)
	}
	if _, dup := b.sides[res.Side]; dup {
		return fmt.Errorf("report: %s thigh already recorded", res.Side)
	}
	b.sides[res.Side] = res
	return nil
}

// Build emits the complete study record, or an error if either side is
// missing.
func (b *Builder) Build() (*StudyRecord, error) {
	left, okL := b.sides[models.Left]
	right, okR := b.sides[models.Right]
	if !okL || !okR {
		var missing []string
		if !okL {
			missing = append(missing, models.Left.String())
		}
		if !okR {
			missing = append(missing, models.Right.String())
		}
		return nil, fmt.Errorf("report: incomplete record, missing %s", strings.Join(missing, " and "))
	}

	return &StudyRecord{
		Subject: b.subject,
		Date:    b.date,
		Left:    b.thighRecord(left),
		Right:   b.thighRecord(right),
	}, nil
}

func (b *Builder) thighRecord(res *segmentation.ThighResult) ThighRecord {
	rec := ThighRecord{
		Side:    res.Side,
		Low:     res.Low,
		High:    res.High,
		CropBox: res.CropBox,
		FatBox:  res.FatBox,
		Areas:   append([]models.AreaRecord(nil), res.Areas...),
		Stats:   map[models.TissueClass]RegionStats{},
	}
	for class, mask := range map[models.TissueClass]imaging.Mask{
		models.Muscle:         res.Muscle,
		models.Fat:            res.Fat,
		models.Bone:           res.Bone,
		models.Noncontractile: res.Noncontractile,
	} {
		rec.Stats[class] = IntensityStats(b.grid, mask)
	}
	return rec
}

// Summary renders the record as the human-readable block printed after
// processing, one line per measurement in a stable order.
func (r *StudyRecord) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject %s, acquired %s\n", r.Subject, r.Date)
	for _, t := range []ThighRecord{r.Left, r.Right} {
		fmt.Fprintf(&sb, "%s thigh (thresholds %d/%d, crop %s):\n", t.Side, t.Low, t.High, t.CropBox)
		for _, a := range t.Areas {
			fmt.Fprintf(&sb, "  %s\n", a)
		}

		classes := make([]models.TissueClass, 0, len(t.Stats))
		for class := range t.Stats {
			classes = append(classes, class)
		}
		sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
		for _, class := range classes {
			s := t.Stats[class]
			fmt.Fprintf(&sb, "  %s intensity: mean %.1f, sd %.1f over %d px\n", class, s.Mean, s.StdDev, s.Pixels)
		}
	}
	return sb.String()
}
