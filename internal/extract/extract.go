// Package extract groups red-mask pixels into discrete label-box candidates.
//
// Masked pixels are clustered with an 8-connected flood fill, each cluster is
// fitted with its minimal enclosing axis-aligned rectangle, and candidates
// are filtered by size, aspect ratio and border coverage before overlapping
// fragments (typically an anti-aliased halo split from its border) are merged
// back together. Output order is deterministic: top-to-bottom, then
// left-to-right by bounding rectangle.
package extract

import (
	"fmt"
	"image"
	"sort"

	"labelmover/internal/geometry"
	"labelmover/internal/segment"
)

// State is a box's overlap classification.
type State int

const (
	StateUnexamined State = iota
	StateOverlapping
	StateClear
)

func (s State) String() string {
	switch s {
	case StateOverlapping:
		return "overlapping"
	case StateClear:
		return "clear"
	default:
		return "unexamined"
	}
}

// Fingerprint is a stable identity for a box across detection passes. It is
// derived from content (label text when available, quantized geometry
// otherwise) rather than object identity, because the sensor hands us fresh
// pixels every pass.
type Fingerprint string

// Box is a detected red-bordered label box.
type Box struct {
	Rect  geometry.Rect `json:"rect"`
	ID    Fingerprint   `json:"id"`
	Label string        `json:"label,omitempty"`

	// Coverage is the ratio of red component pixels to the expected
	// border perimeter 2*(w+h). A clean hollow box scores near 1.0 or
	// above; stray lines and speckle score well below.
	Coverage float64 `json:"coverage"`

	State State `json:"state"`
}

// Options configures candidate filtering and identity quantization.
type Options struct {
	MinWidth  int `json:"min_width"`
	MinHeight int `json:"min_height"`
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`

	// Label boxes are wider than tall.
	MinAspect float64 `json:"min_aspect"`
	MaxAspect float64 `json:"max_aspect"`

	// MinCoverage rejects candidates whose red pixel count falls short of
	// this fraction of the expected border perimeter.
	MinCoverage float64 `json:"min_coverage"`

	// MergeAreaFactor merges two overlapping candidates when their union
	// rectangle stays within this factor of the larger candidate's area.
	MergeAreaFactor float64 `json:"merge_area_factor"`

	// IdentityTolerancePx is the quantization bucket for position-based
	// fingerprints and the matching slack used by the move tracker.
	IdentityTolerancePx int `json:"identity_tolerance_px"`
}

// DefaultOptions returns filters matching typical CAD label boxes.
func DefaultOptions() Options {
	return Options{
		MinWidth:            20,
		MinHeight:           10,
		MaxWidth:            500,
		MaxHeight:           100,
		MinAspect:           1.5,
		MaxAspect:           15.0,
		MinCoverage:         0.8,
		MergeAreaFactor:     1.5,
		IdentityTolerancePx: 24,
	}
}

// Validate clamps values to safe ranges.
func (o *Options) Validate() {
	if o.MinWidth <= 0 {
		o.MinWidth = 20
	}
	if o.MinHeight <= 0 {
		o.MinHeight = 10
	}
	if o.MaxWidth < o.MinWidth {
		o.MaxWidth = 500
	}
	if o.MaxHeight < o.MinHeight {
		o.MaxHeight = 100
	}
	if o.MinAspect <= 0 {
		o.MinAspect = 1.5
	}
	if o.MaxAspect < o.MinAspect {
		o.MaxAspect = 15.0
	}
	if o.MinCoverage <= 0 {
		o.MinCoverage = 0.8
	}
	if o.MergeAreaFactor < 1 {
		o.MergeAreaFactor = 1.5
	}
	if o.IdentityTolerancePx <= 0 {
		o.IdentityTolerancePx = 24
	}
}

// candidate is a connected component before filtering.
type candidate struct {
	rect  geometry.Rect
	count int
}

// Boxes extracts label-box candidates from a red-border mask.
//
// The scan visits pixels row-major, so component discovery — and therefore
// output order after the final sort — is deterministic for a fixed mask.
func Boxes(mask *image.Gray, opts Options) []Box {
	cands := components(mask)
	cands = mergeFragments(cands, opts)

	boxes := make([]Box, 0, len(cands))
	for _, c := range cands {
		w, h := c.rect.Width, c.rect.Height
		if w < opts.MinWidth || h < opts.MinHeight || w > opts.MaxWidth || h > opts.MaxHeight {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < opts.MinAspect || aspect > opts.MaxAspect {
			continue
		}
		coverage := float64(c.count) / float64(2*(w+h))
		if coverage < opts.MinCoverage {
			continue
		}
		boxes = append(boxes, Box{
			Rect:     c.rect,
			ID:       NewFingerprint(c.rect, "", opts.IdentityTolerancePx),
			Coverage: coverage,
			State:    StateUnexamined,
		})
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Rect.Y != boxes[j].Rect.Y {
			return boxes[i].Rect.Y < boxes[j].Rect.Y
		}
		return boxes[i].Rect.X < boxes[j].Rect.X
	})
	return boxes
}

// components groups set mask pixels into 8-connected clusters using an
// iterative flood fill.
func components(mask *image.Gray) []candidate {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	visited := make([]bool, w*h)
	idx := func(x, y int) int { return (y-bounds.Min.Y)*w + (x - bounds.Min.X) }

	var cands []candidate
	var stack []geometry.Point

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if visited[idx(x, y)] || !segment.At(mask, x, y) {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			count := 0
			stack = append(stack[:0], geometry.Point{X: x, Y: y})
			visited[idx(x, y)] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				count++
				if p.X < minX {
					minX = p.X
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.Y > maxY {
					maxY = p.Y
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
							continue
						}
						if visited[idx(nx, ny)] || !segment.At(mask, nx, ny) {
							continue
						}
						visited[idx(nx, ny)] = true
						stack = append(stack, geometry.Point{X: nx, Y: ny})
					}
				}
			}

			cands = append(cands, candidate{
				rect:  geometry.Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
				count: count,
			})
		}
	}
	return cands
}

// mergeFragments joins overlapping candidates whose union stays compact,
// so a border and its detached anti-aliased halo become one detection while
// genuinely distinct boxes that merely brush each other stay separate.
func mergeFragments(cands []candidate, opts Options) []candidate {
	merged := true
	for merged {
		merged = false
		for i := 0; i < len(cands) && !merged; i++ {
			for j := i + 1; j < len(cands); j++ {
				a, b := cands[i], cands[j]
				if !a.rect.Intersects(b.rect) {
					continue
				}
				union := a.rect.Union(b.rect)
				limit := float64(max(a.rect.Area(), b.rect.Area())) * opts.MergeAreaFactor
				if float64(union.Area()) > limit {
					continue
				}
				cands[i] = candidate{rect: union, count: a.count + b.count}
				cands = append(cands[:j], cands[j+1:]...)
				merged = true
				break
			}
		}
	}
	return cands
}

// NewFingerprint derives a stable identity from a bounding rectangle and an
// optional label. Label text wins when present: it survives relocation,
// whereas position buckets do not.
func NewFingerprint(r geometry.Rect, label string, tol int) Fingerprint {
	if label != "" {
		return Fingerprint("label:" + label)
	}
	c := r.Center()
	return Fingerprint(fmt.Sprintf("pos:%d,%d:%dx%d", c.X/tol, c.Y/tol, r.Width/tol, r.Height/tol))
}

// SetLabel attaches OCR'd label text and rebases the identity on it.
func (b *Box) SetLabel(label string, tol int) {
	b.Label = label
	b.ID = NewFingerprint(b.Rect, label, tol)
}
