package segment

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	bildsegment "github.com/anthonynsimon/bild/segment"
	colorful "github.com/lucasb-eyer/go-colorful"

	"labelmover/internal/geometry"
)

// Options configures pixel classification.
type Options struct {
	// HueCenter and HueTolerance define the red band in degrees. The
	// distance is circular, so a center of 0 with tolerance 14 covers
	// both [0,14] and [346,360).
	HueCenter    float64 `json:"hue_center"`
	HueTolerance float64 `json:"hue_tolerance"`

	// SaturationMin and ValueMin reject washed-out and dark pixels that
	// share the red hue (grays, browns, shadows). Range 0..1.
	SaturationMin float64 `json:"saturation_min"`
	ValueMin      float64 `json:"value_min"`

	// CloseRadius applies a morphological close to the red mask when > 0,
	// healing single-pixel gaps left by anti-aliasing. Lossless captures
	// do not need it.
	CloseRadius int `json:"close_radius"`

	// WhiteLevel is the minimum luminance for a pixel to count as
	// background.
	WhiteLevel uint8 `json:"white_level"`

	// RedHalo dilates the red mask by this radius before subtracting it
	// from the occupancy mask, so anti-aliased remnants around borders do
	// not register as foreign content.
	RedHalo int `json:"red_halo"`
}

// DefaultOptions returns thresholds tuned for CAD screenshots with red
// label boxes on a white sheet.
func DefaultOptions() Options {
	return Options{
		HueCenter:     0,
		HueTolerance:  14,
		SaturationMin: 0.45,
		ValueMin:      0.50,
		CloseRadius:   0,
		WhiteLevel:    200,
		RedHalo:       1,
	}
}

// Validate clamps values to safe ranges.
func (o *Options) Validate() {
	if o.HueTolerance <= 0 || o.HueTolerance > 180 {
		o.HueTolerance = 14
	}
	o.HueCenter = math.Mod(math.Mod(o.HueCenter, 360)+360, 360)
	if o.SaturationMin <= 0 || o.SaturationMin >= 1 {
		o.SaturationMin = 0.45
	}
	if o.ValueMin <= 0 || o.ValueMin >= 1 {
		o.ValueMin = 0.50
	}
	if o.CloseRadius < 0 {
		o.CloseRadius = 0
	}
	if o.WhiteLevel == 0 {
		o.WhiteLevel = 200
	}
	if o.RedHalo < 0 {
		o.RedHalo = 0
	}
}

// RedMask marks every pixel whose color falls inside the configured red
// band. An empty image yields an empty mask, not an error.
func RedMask(img image.Image, opts Options) *image.Gray {
	bounds := img.Bounds()
	mask := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			h, s, v := c.Hsv()
			if hueDist(h, opts.HueCenter) <= opts.HueTolerance &&
				s >= opts.SaturationMin && v >= opts.ValueMin {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	if opts.CloseRadius > 0 {
		mask = Close(mask, opts.CloseRadius)
	}
	return mask
}

// BackgroundMask marks white-sheet pixels: everything at or above the
// configured luminance level.
func BackgroundMask(img image.Image, opts Options) *image.Gray {
	if img.Bounds().Empty() {
		return image.NewGray(img.Bounds())
	}
	return bildsegment.Threshold(img, opts.WhiteLevel)
}

// OccupancyMask marks drawing content: pixels that are neither background
// nor part of a (halo-expanded) red border. This is the "other content"
// the overlap analyzer and the free-space search test against.
func OccupancyMask(img image.Image, red *image.Gray, opts Options) *image.Gray {
	bounds := img.Bounds()
	occ := image.NewGray(bounds)
	if bounds.Empty() {
		return occ
	}

	bg := BackgroundMask(img, opts)
	halo := red
	if opts.RedHalo > 0 {
		halo = Dilate(red, opts.RedHalo)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if At(bg, x, y) || At(halo, x, y) {
				continue
			}
			occ.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return occ
}

// Dilate grows mask regions by the given radius.
func Dilate(mask *image.Gray, radius int) *image.Gray {
	if radius <= 0 || mask.Bounds().Empty() {
		return mask
	}
	return rebinarize(effect.Dilate(mask, float64(radius)))
}

// Close runs a dilate-then-erode pass, filling gaps up to roughly 2×radius
// wide without shrinking solid regions.
func Close(mask *image.Gray, radius int) *image.Gray {
	if radius <= 0 || mask.Bounds().Empty() {
		return mask
	}
	dilated := effect.Dilate(mask, float64(radius))
	return rebinarize(effect.Erode(dilated, float64(radius)))
}

// At reports whether the mask pixel is set. Out-of-bounds reads are false.
func At(mask *image.Gray, x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(mask.Bounds()) {
		return false
	}
	return mask.GrayAt(x, y).Y >= 128
}

// CountRect returns the number of set pixels inside r, clipped to the mask
// bounds.
func CountRect(mask *image.Gray, r geometry.Rect) int {
	clipped := r.ToImage().Intersect(mask.Bounds())
	n := 0
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			if mask.GrayAt(x, y).Y >= 128 {
				n++
			}
		}
	}
	return n
}

// AnyInRect reports whether any set pixel lies inside r, clipped to the
// mask bounds. Stops at the first hit.
func AnyInRect(mask *image.Gray, r geometry.Rect) bool {
	clipped := r.ToImage().Intersect(mask.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			if mask.GrayAt(x, y).Y >= 128 {
				return true
			}
		}
	}
	return false
}

// rebinarize collapses a morphology result back to a strict 0/255 mask.
func rebinarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// Luminance of a gray morphology result; any channel works.
			if (r+g+b)/3 >= 128<<8 {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// hueDist returns the circular distance between two hues in degrees.
func hueDist(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
