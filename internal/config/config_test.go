package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Extract.MinWidth != Default().Extract.MinWidth {
		t.Error("missing file should yield defaults")
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Segment.HueTolerance = 20
	cfg.Search.Stride = 8
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Segment.HueTolerance != 20 {
		t.Errorf("hue tolerance: got %v, want 20", loaded.Segment.HueTolerance)
	}
	if loaded.Search.Stride != 8 {
		t.Errorf("stride: got %v, want 8", loaded.Search.Stride)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("malformed file should return an error")
	}
	if cfg.Extract.MinWidth != Default().Extract.MinWidth {
		t.Error("malformed file should fall back to defaults")
	}
}

func TestValidate_ClampsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Segment.HueTolerance = -5
	cfg.Extract.MinWidth = 0
	cfg.Search.Stride = 0
	cfg.Analyze.OverlapMargin = -1

	cfg.Validate()

	if cfg.Segment.HueTolerance <= 0 {
		t.Error("hue tolerance not clamped")
	}
	if cfg.Extract.MinWidth <= 0 {
		t.Error("min width not clamped")
	}
	if cfg.Search.Stride <= 0 {
		t.Error("stride not clamped")
	}
	if cfg.Analyze.OverlapMargin <= 0 {
		t.Error("overlap margin not clamped")
	}
}

func TestChromeRegions(t *testing.T) {
	regions := ChromeRegions(1920, 1080)
	if len(regions) != 4 {
		t.Fatalf("got %d regions, want 4", len(regions))
	}
	if regions[0].Height != 50 || regions[0].Width != 1920 {
		t.Errorf("top bar: got %v", regions[0])
	}
	if regions[1].Width != 180 {
		t.Errorf("left sidebar: got %v", regions[1])
	}
	if regions[2].X != 1890 {
		t.Errorf("right strip: got %v", regions[2])
	}
	if regions[3].Y != 1050 {
		t.Errorf("bottom strip: got %v", regions[3])
	}
}
