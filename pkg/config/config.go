// Package config provides configuration loading and management for
// thighseg. It handles loading configuration from YAML files and
// provides default values, plus parsing of the per-image study file
// that carries the externally acquired seeds and polygons.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"thighseg/internal/models"
	"thighseg/pkg/rasterize"
	"thighseg/pkg/segmentation"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// Tolerance is the region-growing intensity tolerance.
		Tolerance int `yaml:"tolerance"`

		// MuscleSeedCount is how many muscle seeds each thigh is
		// expected to carry (2 to 4 depending on deployment).
		MuscleSeedCount int `yaml:"muscleSeedCount"`
	} `yaml:"segmentation"`

	// Output parameters
	Output struct {
		// SaveOverlays controls whether per-mask PNG overlays are
		// written next to the results.
		SaveOverlays bool `yaml:"saveOverlays"`

		// OverlayDir is the directory overlay images are written to.
		OverlayDir string `yaml:"overlayDir"`

		// ResultsCSV is the tabular file study records are appended to.
		ResultsCSV string `yaml:"resultsCsv"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	defaults := segmentation.DefaultParams()
	cfg.Segmentation.Tolerance = defaults.Tolerance
	cfg.Segmentation.MuscleSeedCount = defaults.MuscleSeedCount

	cfg.Output.SaveOverlays = false
	cfg.Output.OverlayDir = "overlays"
	cfg.Output.ResultsCSV = "results.csv"
	cfg.Output.Verbose = true

	return cfg
}

// Params converts the configuration into segmentation parameters.
func (c *Config) Params() segmentation.Params {
	return segmentation.Params{
		Tolerance:       c.Segmentation.Tolerance,
		MuscleSeedCount: c.Segmentation.MuscleSeedCount,
	}
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// ThighInputs is the per-thigh block of a study file: the seed
// coordinates and the two committed muscle-group polygons acquired
// interactively upstream.
type ThighInputs struct {
	FatSeed         models.Seed       `yaml:"fatSeed"`
	BoneSeed        models.Seed       `yaml:"boneSeed"`
	MuscleSeeds     []models.Seed     `yaml:"muscleSeeds"`
	FlexorPolygon   rasterize.Polygon `yaml:"flexorPolygon"`
	ExtensorPolygon rasterize.Polygon `yaml:"extensorPolygon"`
}

// Inputs converts the block into segmentation inputs.
func (t *ThighInputs) Inputs() segmentation.Inputs {
	return segmentation.Inputs{
		FatSeed:     t.FatSeed,
		BoneSeed:    t.BoneSeed,
		MuscleSeeds: t.MuscleSeeds,
	}
}

// Study describes one acquisition: the subject, the image to segment,
// the optional pixel-spacing factor, and the inputs for both thighs.
type Study struct {
	Subject string `yaml:"subject"`
	Date    string `yaml:"date"`
	Image   string `yaml:"image"`

	// PixelSpacing is the physical area one pixel represents, in
	// mm^2. Zero means the acquisition metadata carried no spacing
	// and areas fall back to pixel counts.
	PixelSpacing float64 `yaml:"pixelSpacing"`

	Left  ThighInputs `yaml:"left"`
	Right ThighInputs `yaml:"right"`
}

// LoadStudy parses a study file.
func LoadStudy(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading study file: %w", err)
	}

	study := &Study{}
	if err := yaml.Unmarshal(data, study); err != nil {
		return nil, fmt.Errorf("error parsing study file: %w", err)
	}

	if study.Image == "" {
		return nil, fmt.Errorf("study file %s names no image", path)
	}
	return study, nil
}
