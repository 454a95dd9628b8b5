package jobconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TrailSight/TS-Backend/internal/jobconfig"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := jobconfig.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BoundingBox.NELat != 38.1851 || cfg.BoundingBox.SWLng != -119.8864 {
		t.Errorf("unexpected default bounding box: %+v", cfg.BoundingBox)
	}
	if cfg.PerPage != 100 || cfg.MaxPages != 5 {
		t.Errorf("unexpected default paging: per_page=%d max_pages=%d", cfg.PerPage, cfg.MaxPages)
	}
	if cfg.MatchDistanceM != 50 {
		t.Errorf("expected 50m match distance, got %f", cfg.MatchDistanceM)
	}
	if cfg.WatermarkMode != "strict" {
		t.Errorf("expected strict watermark mode, got %q", cfg.WatermarkMode)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
bounding_box:
  nelat: 45.0
  nelng: -110.0
  swlat: 44.0
  swlng: -111.0
per_page: 50
watermark_mode: day-inclusive
`)

	cfg, err := jobconfig.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BoundingBox.NELat != 45.0 || cfg.BoundingBox.SWLng != -111.0 {
		t.Errorf("bounding box not overridden: %+v", cfg.BoundingBox)
	}
	if cfg.PerPage != 50 {
		t.Errorf("expected per_page 50, got %d", cfg.PerPage)
	}
	if cfg.WatermarkMode != "day-inclusive" {
		t.Errorf("expected day-inclusive, got %q", cfg.WatermarkMode)
	}
	// Untouched fields keep their defaults.
	if cfg.MaxPages != 5 || cfg.LookbackDays != 730 {
		t.Errorf("defaults lost: max_pages=%d lookback_days=%d", cfg.MaxPages, cfg.LookbackDays)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := jobconfig.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*jobconfig.Config)
	}{
		{"inverted latitudes", func(c *jobconfig.Config) { c.BoundingBox.NELat, c.BoundingBox.SWLat = c.BoundingBox.SWLat, c.BoundingBox.NELat }},
		{"inverted longitudes", func(c *jobconfig.Config) { c.BoundingBox.NELng, c.BoundingBox.SWLng = c.BoundingBox.SWLng, c.BoundingBox.NELng }},
		{"per_page zero", func(c *jobconfig.Config) { c.PerPage = 0 }},
		{"per_page over cap", func(c *jobconfig.Config) { c.PerPage = 201 }},
		{"max_pages zero", func(c *jobconfig.Config) { c.MaxPages = 0 }},
		{"negative match distance", func(c *jobconfig.Config) { c.MatchDistanceM = -1 }},
		{"unknown watermark mode", func(c *jobconfig.Config) { c.WatermarkMode = "loose" }},
		{"lookback zero", func(c *jobconfig.Config) { c.LookbackDays = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := jobconfig.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	if err := jobconfig.Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultSince(t *testing.T) {
	cfg := jobconfig.Default()
	cfg.LookbackDays = 30
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	if got := cfg.DefaultSince(now); got != "2026-05-01" {
		t.Errorf("expected 2026-05-01, got %q", got)
	}
}
