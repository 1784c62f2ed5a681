package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "golang.org/x/image/tiff"

	"thighseg/internal/models"
	"thighseg/pkg/config"
	"thighseg/pkg/imaging"
	"thighseg/pkg/report"
	"thighseg/pkg/segmentation"
	"thighseg/pkg/visualization"
)

func main() {
	studyPath := flag.String("study", "", "YAML study file with image path, seeds and polygons")
	configPath := flag.String("config", "thighseg.yaml", "Configuration file (defaults apply if absent)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *studyPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	study, err := config.LoadStudy(*studyPath)
	if err != nil {
		log.Fatalf("Failed to load study file: %v", err)
	}

	record, cropped, results, err := run(cfg, study)
	if err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}

	fmt.Println(record.Summary())

	if cfg.Output.ResultsCSV != "" {
		if err := appendRecord(cfg.Output.ResultsCSV, record); err != nil {
			log.Fatalf("Failed to append record to %s: %v", cfg.Output.ResultsCSV, err)
		}
		fmt.Printf("Record appended to %s\n", cfg.Output.ResultsCSV)
	}

	if cfg.Output.SaveOverlays {
		renderer := visualization.NewRenderer(cropped)
		dir := filepath.Join(cfg.Output.OverlayDir, study.Subject)
		for _, res := range results {
			if err := renderer.SaveResultOverlays(res, dir); err != nil {
				log.Printf("Warning: failed to save %s overlays: %v", res.Side, err)
			}
		}
		fmt.Printf("Overlays saved to %s\n", dir)
	}
}

// run executes the full pipeline for one study: decode, crop,
// threshold, then both thighs concurrently. The two sides share no
// mutable state, so no ordering is required between them; the record is
// assembled only once both have completed.
func run(cfg *config.Config, study *config.Study) (*report.StudyRecord, *imaging.Grid, []*segmentation.ThighResult, error) {
	verbose := cfg.Output.Verbose

	if verbose {
		fmt.Println("Step 1: Decoding image...")
	}
	grid, err := loadGrid(study.Image)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading image: %w", err)
	}
	if verbose {
		fmt.Printf("Loaded %dx%d image, intensity range [%d, %d]\n",
			grid.Rows(), grid.Cols(), grid.Min(), grid.Max())
	}

	if verbose {
		fmt.Println("Step 2: Cropping background and computing thresholds...")
	}
	quant := segmentation.NewQuantifier(study.PixelSpacing, nil)
	seg, err := segmentation.NewSegmenter(grid, quant, cfg.Params())
	if err != nil {
		return nil, nil, nil, err
	}
	if verbose {
		low, high := seg.Thresholds()
		fmt.Printf("Crop box %s, thresholds %d/%d\n", seg.CropBox(), low, high)
	}

	if verbose {
		fmt.Println("Step 3: Segmenting both thighs...")
	}
	type sideJob struct {
		side   models.Side
		inputs config.ThighInputs
	}
	jobs := []sideJob{
		{models.Left, study.Left},
		{models.Right, study.Right},
	}

	results := make([]*segmentation.ThighResult, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job sideJob) {
			defer wg.Done()
			results[i], errs[i] = seg.SegmentSide(job.side, job.inputs.Inputs(),
				job.inputs.FlexorPolygon, job.inputs.ExtensorPolygon)
		}(i, job)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s thigh: %w", jobs[i].side, err)
		}
	}

	if verbose {
		fmt.Println("Step 4: Assembling study record...")
	}
	builder := report.NewBuilder(study.Subject, study.Date, seg.Cropped())
	for _, res := range results {
		if err := builder.Add(res); err != nil {
			return nil, nil, nil, err
		}
	}
	record, err := builder.Build()
	if err != nil {
		return nil, nil, nil, err
	}

	return record, seg.Cropped(), results, nil
}

// loadGrid decodes the image file (PNG, JPEG, or TIFF) into an
// intensity grid.
func loadGrid(path string) (*imaging.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return imaging.FromImage(img)
}

// appendRecord appends one complete study record as a CSV row, writing
// a header first when the file is new. Persistence stays outside the
// core: the record is already final when it reaches this point.
func appendRecord(path string, r *report.StudyRecord) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if newFile {
		header := []string{"subject", "date"}
		for _, t := range []report.ThighRecord{r.Left, r.Right} {
			for _, a := range t.Areas {
				header = append(header, fmt.Sprintf("%s_%s_%s", t.Side, a.Class, a.Unit))
			}
			header = append(header, fmt.Sprintf("%s_low", t.Side), fmt.Sprintf("%s_high", t.Side))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	row := []string{r.Subject, r.Date}
	for _, t := range []report.ThighRecord{r.Left, r.Right} {
		for _, a := range t.Areas {
			row = append(row, strconv.FormatFloat(a.Value, 'f', 2, 64))
		}
		row = append(row, strconv.Itoa(t.Low), strconv.Itoa(t.High))
	}
	return w.Write(row)
}
