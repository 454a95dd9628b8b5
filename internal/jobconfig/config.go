// Package jobconfig loads the batch-job configuration file shared by the
// sync and seeding jobs: the observation bounding box, paging budget, and
// matching/watermark behavior.
package jobconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/TrailSight/TS-Backend/internal/geo"
	"github.com/goccy/go-yaml"
)

// BoundingBox is the observation search area (south-west and north-east
// corners).
type BoundingBox struct {
	NELat float64 `yaml:"nelat"`
	NELng float64 `yaml:"nelng"`
	SWLat float64 `yaml:"swlat"`
	SWLng float64 `yaml:"swlng"`
}

// Config is the full job configuration.
type Config struct {
	BoundingBox BoundingBox `yaml:"bounding_box"`

	// PerPage and MaxPages bound a single fetch. MaxPages is the hard
	// ceiling on job duration.
	PerPage  int `yaml:"per_page"`
	MaxPages int `yaml:"max_pages"`

	// MatchDistanceM is the trail matching threshold in meters.
	MatchDistanceM float64 `yaml:"match_distance_m"`

	// WatermarkMode is "strict" (default) or "day-inclusive".
	WatermarkMode string `yaml:"watermark_mode"`

	// LookbackDays sets the lower date bound for a location's first sync,
	// before any watermark exists.
	LookbackDays int `yaml:"lookback_days"`
}

// Default is the configuration used when no file is given: the Yosemite
// bounding box the project started with, two years of lookback.
func Default() Config {
	return Config{
		BoundingBox: BoundingBox{
			NELat: 38.1851,
			NELng: -119.1964,
			SWLat: 37.4927,
			SWLng: -119.8864,
		},
		PerPage:        100,
		MaxPages:       5,
		MatchDistanceM: geo.DefaultMatchDistanceM,
		WatermarkMode:  "strict",
		LookbackDays:   730,
	}
}

// Load reads a YAML config file, filling unset fields from Default.
// An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the jobs cannot run with.
func (c Config) Validate() error {
	if c.BoundingBox.NELat <= c.BoundingBox.SWLat {
		return fmt.Errorf("bounding box: nelat must be north of swlat")
	}
	if c.BoundingBox.NELng <= c.BoundingBox.SWLng {
		return fmt.Errorf("bounding box: nelng must be east of swlng")
	}
	if c.PerPage <= 0 || c.PerPage > 200 {
		return fmt.Errorf("per_page must be in 1..200, got %d", c.PerPage)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	}
	if c.MatchDistanceM <= 0 {
		return fmt.Errorf("match_distance_m must be positive, got %f", c.MatchDistanceM)
	}
	switch c.WatermarkMode {
	case "strict", "day-inclusive":
	default:
		return fmt.Errorf("watermark_mode must be strict or day-inclusive, got %q", c.WatermarkMode)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", c.LookbackDays)
	}
	return nil
}

// DefaultSince renders the first-run lower date bound as a d1 date.
func (c Config) DefaultSince(now time.Time) string {
	return now.AddDate(0, 0, -c.LookbackDays).Format("2006-01-02")
}
