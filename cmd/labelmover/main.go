package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"labelmover/internal/calibrate"
	"labelmover/internal/config"
	"labelmover/internal/geometry"
	"labelmover/internal/imgutil"
	"labelmover/internal/ocr"
	"labelmover/internal/overlay"
	"labelmover/internal/plan"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		imagePath   = flag.String("image", "", "drawing capture to analyze (PNG, JPEG, GIF, TIFF, BMP)")
		configPath  = flag.String("config", "", "JSON configuration file (optional)")
		overlayPath = flag.String("overlay", "", "write an annotated copy of the capture here")
		chrome      = flag.Bool("chrome", false, "exclude the standard CAD UI regions (toolbars, sidebars)")
		swatch      = flag.String("calibrate", "", "sample border color from region x,y,wxh and print the derived config")
		noOCR       = flag.Bool("no-ocr", false, "skip label recognition even when Tesseract is available")
		debug       = flag.Bool("debug", false, "enable debug logging")
		version     = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("labelmover %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}
	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "labelmover: -image is required")
		flag.Usage()
		os.Exit(2)
	}

	// Logs go to stderr; stdout carries the JSON plan.
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*imagePath, *configPath, *overlayPath, *swatch, *chrome, *noOCR, log); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(imagePath, configPath, overlayPath, swatch string, chrome, noOCR bool, log *slog.Logger) error {
	img, err := imgutil.Load(imagePath)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	log.Debug("capture loaded", "path", imagePath, "size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warn("config unusable, falling back to defaults", "path", configPath, "err", err)
	}
	if chrome {
		cfg.Reserved = append(cfg.Reserved, config.ChromeRegions(bounds.Dx(), bounds.Dy())...)
	}

	if swatch != "" {
		r, err := parseRegion(swatch)
		if err != nil {
			return fmt.Errorf("bad -calibrate region: %w", err)
		}
		opts, err := calibrate.FromSwatch(img, r)
		if err != nil {
			return err
		}
		cfg.Segment = opts
		log.Info("calibrated from swatch",
			"hue_center", fmt.Sprintf("%.1f", opts.HueCenter),
			"hue_tolerance", fmt.Sprintf("%.1f", opts.HueTolerance))
	}

	p := plan.New(cfg, log)
	if !noOCR && ocr.Available() {
		p.SetLabelReader(ocr.NewReader("eng"))
	} else {
		log.Debug("label recognition disabled")
	}

	res, err := p.Pass(img)
	if err != nil {
		return err
	}
	log.Info("pass complete", "boxes", len(res.Boxes), "moves", len(res.Moves), "unplaced", res.Unplaced)

	if overlayPath != "" {
		if err := imgutil.Save(overlay.Render(img, res), overlayPath); err != nil {
			return err
		}
		log.Info("overlay written", "path", overlayPath)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// parseRegion parses "x,y,WxH" into a rectangle.
func parseRegion(s string) (geometry.Rect, error) {
	var r geometry.Rect
	if _, err := fmt.Sscanf(s, "%d,%d,%dx%d", &r.X, &r.Y, &r.Width, &r.Height); err != nil {
		return r, err
	}
	if r.Width <= 0 || r.Height <= 0 {
		return r, fmt.Errorf("degenerate region %q", s)
	}
	return r, nil
}
