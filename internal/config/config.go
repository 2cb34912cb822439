// Package config holds the pipeline's runtime configuration. Fields may be
// loaded from a JSON file and overridden by command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"labelmover/internal/analyze"
	"labelmover/internal/extract"
	"labelmover/internal/freespace"
	"labelmover/internal/geometry"
	"labelmover/internal/segment"
)

// Config aggregates the per-stage options plus the reserved UI regions.
type Config struct {
	Segment segment.Options   `json:"segment"`
	Extract extract.Options   `json:"extract"`
	Analyze analyze.Options   `json:"analyze"`
	Search  freespace.Options `json:"search"`

	// Reserved rectangles are never valid destinations, and detections
	// wholly inside one are discarded as UI chrome.
	Reserved []geometry.Rect `json:"reserved_regions,omitempty"`
}

// Default returns the standard configuration for CAD screenshots.
func Default() Config {
	return Config{
		Segment: segment.DefaultOptions(),
		Extract: extract.DefaultOptions(),
		Analyze: analyze.DefaultOptions(),
		Search:  freespace.DefaultOptions(),
	}
}

// Validate clamps every stage's options to safe ranges.
func (c *Config) Validate() {
	c.Segment.Validate()
	c.Extract.Validate()
	c.Analyze.Validate()
	c.Search.Validate()
}

// Load reads configuration from the given JSON file. A missing file is not
// an error: defaults are returned. A malformed file returns defaults plus
// the decode error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func Save(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ChromeRegions returns the default UI-exclusion rectangles for a capture
// of the given dimensions: menu/tool bar along the top, tool sidebar on the
// left, and thin strips along the right and bottom edges.
func ChromeRegions(width, height int) []geometry.Rect {
	return []geometry.Rect{
		{X: 0, Y: 0, Width: width, Height: 50},
		{X: 0, Y: 0, Width: 180, Height: height},
		{X: width - 30, Y: 0, Width: 30, Height: height},
		{X: 0, Y: height - 30, Width: width, Height: 30},
	}
}
