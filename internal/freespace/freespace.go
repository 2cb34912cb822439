// Package freespace searches the drawing for a background region able to
// host a relocated box.
//
// The search walks concentric square rings outward from the box's original
// position, so the first qualifying candidate is also the closest one at
// the ring granularity. Candidates within a ring are visited in row-major
// order, making the result deterministic for fixed inputs.
package freespace

import (
	"errors"
	"image"
	"sort"

	"labelmover/internal/extract"
	"labelmover/internal/geometry"
	"labelmover/internal/segment"
)

// ErrNoSpace reports that no qualifying destination exists within the
// search budget. It is recoverable: the box stays where it is and becomes
// eligible again on the next pass.
var ErrNoSpace = errors.New("no free space within search budget")

// Options configures the destination search.
type Options struct {
	// Clearance is the margin, in pixels, kept between a destination and
	// any neighboring content to avoid an immediate re-collision.
	Clearance int `json:"clearance"`

	// Stride is the ring spacing. Coarser strides search farther for the
	// same budget at the cost of placement granularity.
	Stride int `json:"stride"`

	// MaxRadius bounds the Chebyshev distance from the original position.
	MaxRadius int `json:"max_radius"`

	// MaxCandidates bounds the total number of candidate rectangles
	// evaluated, as a hard stop on pathological images.
	MaxCandidates int `json:"max_candidates"`
}

// DefaultOptions returns a search reaching most of a screen-sized drawing.
func DefaultOptions() Options {
	return Options{
		Clearance:     5,
		Stride:        10,
		MaxRadius:     600,
		MaxCandidates: 20000,
	}
}

// Validate clamps values to safe ranges.
func (o *Options) Validate() {
	if o.Clearance < 0 {
		o.Clearance = 5
	}
	if o.Stride <= 0 {
		o.Stride = 10
	}
	if o.MaxRadius < o.Stride {
		o.MaxRadius = 600
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = 20000
	}
}

// Request carries everything a destination must be tested against.
type Request struct {
	// Box is the relocation target; the search starts at its position
	// and the destination matches its dimensions.
	Box extract.Box

	// Boxes is every currently-known box, including the target. The
	// target's own footprint is avoided too: parking a box back on its
	// original spot is never a useful move.
	Boxes []extract.Box

	// Reserved rectangles (UI chrome) are never valid destinations.
	Reserved []geometry.Rect

	// Planned holds destinations already claimed earlier in this pass;
	// they count as occupied so two boxes cannot be routed to the same
	// clearing.
	Planned []geometry.Rect

	// Occupancy is the non-background content mask.
	Occupancy *image.Gray
}

// Find returns the closest qualifying destination rectangle for the
// request, or ErrNoSpace when the budget is exhausted first.
func Find(req Request, opts Options) (geometry.Rect, error) {
	bounds := geometry.RectFromImage(req.Occupancy.Bounds())
	w, h := req.Box.Rect.Width, req.Box.Rect.Height
	origin := geometry.Point{X: req.Box.Rect.X, Y: req.Box.Rect.Y}

	evaluated := 0
	for d := 0; d <= opts.MaxRadius; d += opts.Stride {
		for _, off := range ringOffsets(d, opts.Stride) {
			if evaluated >= opts.MaxCandidates {
				return geometry.Rect{}, ErrNoSpace
			}
			evaluated++

			cand := geometry.Rect{X: origin.X + off.X, Y: origin.Y + off.Y, Width: w, Height: h}
			if qualifies(cand, bounds, req, opts) {
				return cand, nil
			}
		}
	}
	return geometry.Rect{}, ErrNoSpace
}

// qualifies tests one candidate: fully in bounds, and — after clearance
// expansion — free of drawing content, every known box, reserved regions,
// and destinations planned earlier in the pass.
func qualifies(cand, bounds geometry.Rect, req Request, opts Options) bool {
	if !bounds.ContainsRect(cand) {
		return false
	}
	zone := cand.Expand(opts.Clearance)

	for _, b := range req.Boxes {
		if zone.Intersects(b.Rect) {
			return false
		}
	}
	for _, r := range req.Reserved {
		if zone.Intersects(r) {
			return false
		}
	}
	for _, p := range req.Planned {
		if zone.Intersects(p) {
			return false
		}
	}
	// Clearance clipped to image bounds; the candidate itself is known
	// to be inside.
	return !segment.AnyInRect(req.Occupancy, zone)
}

// ringOffsets returns the offsets on the square ring of Chebyshev radius d,
// quantized to the stride and sorted row-major.
func ringOffsets(d, stride int) []geometry.Point {
	if d == 0 {
		return []geometry.Point{{X: 0, Y: 0}}
	}

	var offs []geometry.Point
	for dx := -d; dx <= d; dx += stride {
		offs = append(offs, geometry.Point{X: dx, Y: -d}, geometry.Point{X: dx, Y: d})
	}
	for dy := -d + stride; dy <= d-stride; dy += stride {
		offs = append(offs, geometry.Point{X: -d, Y: dy}, geometry.Point{X: d, Y: dy})
	}

	sort.Slice(offs, func(i, j int) bool {
		if offs[i].Y != offs[j].Y {
			return offs[i].Y < offs[j].Y
		}
		return offs[i].X < offs[j].X
	})
	return offs
}
