// Package analyze classifies detected boxes as Overlapping or Clear.
//
// A box is Overlapping when it collides with content that is not its own:
// another detected box nearby, or drawing geometry crossing its border. The
// border test counts occupancy-mask pixels in a thin band straddling the
// box rectangle. Any external element that intersects the box interior must
// pass through that band, while the box's own label text sits strictly
// inside it — which is exactly the self-overlap exemption the pipeline
// needs, at the cost of also exempting content entirely swallowed by the
// box (indistinguishable from a label without semantic knowledge).
package analyze

import (
	"image"

	"labelmover/internal/extract"
	"labelmover/internal/segment"
)

// Options configures overlap classification.
type Options struct {
	// OverlapMargin is the half-width of the border band tested for
	// foreign content, in pixels on each side of the box rectangle.
	OverlapMargin int `json:"overlap_margin"`

	// ProximityMargin expands box rectangles before testing them against
	// each other, so crowded neighbors count as overlap before they
	// visually collide.
	ProximityMargin int `json:"proximity_margin"`

	// MinForeignPixels is the number of occupied band pixels required to
	// flag an overlap, filtering lone speckles.
	MinForeignPixels int `json:"min_foreign_pixels"`
}

// DefaultOptions returns classification margins for screen-resolution
// drawings.
func DefaultOptions() Options {
	return Options{
		OverlapMargin:    4,
		ProximityMargin:  10,
		MinForeignPixels: 4,
	}
}

// Validate clamps values to safe ranges.
func (o *Options) Validate() {
	if o.OverlapMargin <= 0 {
		o.OverlapMargin = 4
	}
	if o.ProximityMargin < 0 {
		o.ProximityMargin = 10
	}
	if o.MinForeignPixels <= 0 {
		o.MinForeignPixels = 4
	}
}

// Classify returns a copy of boxes with every State resolved to
// Overlapping or Clear. The occupancy mask must already exclude red border
// pixels (see segment.OccupancyMask). Classification is a pure function of
// its inputs: the same image yields the same states on every run.
func Classify(boxes []extract.Box, occ *image.Gray, opts Options) []extract.Box {
	out := make([]extract.Box, len(boxes))
	copy(out, boxes)

	for i := range out {
		if crowded(out, i, opts.ProximityMargin) || bandOccupied(occ, out[i], opts) {
			out[i].State = extract.StateOverlapping
		} else {
			out[i].State = extract.StateClear
		}
	}
	return out
}

// crowded reports whether box i sits within the proximity margin of any
// other box.
func crowded(boxes []extract.Box, i int, margin int) bool {
	grown := boxes[i].Rect.Expand(margin)
	for j := range boxes {
		if j == i {
			continue
		}
		if grown.Intersects(boxes[j].Rect) {
			return true
		}
	}
	return false
}

// bandOccupied counts occupied pixels in the band straddling the box
// rectangle: everything inside rect.Expand(margin) but outside
// rect.Expand(-margin). Content wholly inside the inner rectangle cancels
// out of the subtraction, leaving only border-crossing content.
func bandOccupied(occ *image.Gray, box extract.Box, opts Options) bool {
	outer := segment.CountRect(occ, box.Rect.Expand(opts.OverlapMargin))
	inner := segment.CountRect(occ, box.Rect.Expand(-opts.OverlapMargin))
	return outer-inner >= opts.MinForeignPixels
}
