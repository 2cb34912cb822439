// Package calibrate derives segmentation thresholds from a sample of the
// actual border color, for captures whose red differs from the defaults
// (theme variations, color-managed displays, lossy capture chains).
package calibrate

import (
	"errors"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"labelmover/internal/geometry"
	"labelmover/internal/segment"
)

// ErrEmptySwatch reports a sample region with no usable pixels.
var ErrEmptySwatch = errors.New("swatch region contains no pixels")

// FromSwatch samples the pixels inside r, assumed to show only border
// color, and returns segmentation options centered on what it finds. The
// hue mean is circular so swatches straddling the 0/360 boundary calibrate
// correctly. Fields unrelated to color keep their defaults.
func FromSwatch(img image.Image, r geometry.Rect) (segment.Options, error) {
	opts := segment.DefaultOptions()

	clipped := r.ToImage().Intersect(img.Bounds())
	if clipped.Empty() {
		return opts, ErrEmptySwatch
	}

	var hues, sins, coss, sats, vals []float64
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			h, s, v := c.Hsv()
			rad := h * math.Pi / 180
			hues = append(hues, h)
			sins = append(sins, math.Sin(rad))
			coss = append(coss, math.Cos(rad))
			sats = append(sats, s)
			vals = append(vals, v)
		}
	}
	if len(hues) == 0 {
		return opts, ErrEmptySwatch
	}

	center := math.Atan2(stat.Mean(sins, nil), stat.Mean(coss, nil)) * 180 / math.Pi
	center = math.Mod(center+360, 360)

	devs := make([]float64, len(hues))
	for i, h := range hues {
		devs[i] = circDist(h, center)
	}

	opts.HueCenter = center
	opts.HueTolerance = clamp(2*stat.StdDev(devs, nil)+4, 6, 40)
	opts.SaturationMin = clamp(stat.Mean(sats, nil)-2*stat.StdDev(sats, nil), 0.15, 0.9)
	opts.ValueMin = clamp(stat.Mean(vals, nil)-2*stat.StdDev(vals, nil), 0.15, 0.9)
	return opts, nil
}

func circDist(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
