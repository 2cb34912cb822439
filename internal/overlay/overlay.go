// Package overlay renders a detection pass onto the capture for visual
// review: box outlines colored by state, planned destinations, and arrows
// from each origin to its destination.
package overlay

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"labelmover/internal/extract"
	"labelmover/internal/geometry"
	"labelmover/internal/plan"
)

// Render returns a copy of img annotated with the pass result. Overlapping
// boxes are outlined red, clear boxes green, unexamined gray; destinations
// are dashed green and each move gets a yellow arrow.
func Render(img image.Image, res *plan.Result) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)

	for _, b := range res.Boxes {
		switch b.State {
		case extract.StateOverlapping:
			dc.SetRGBA(0.9, 0.1, 0.1, 0.9)
		case extract.StateClear:
			dc.SetRGBA(0.1, 0.7, 0.1, 0.9)
		default:
			dc.SetRGBA(0.5, 0.5, 0.5, 0.9)
		}
		strokeRect(dc, b.Rect.Expand(2))
		if b.Label != "" {
			dc.DrawString(b.Label, float64(b.Rect.X), float64(b.Rect.Y-4))
		}
	}

	for _, mv := range res.Moves {
		dc.SetRGBA(0.1, 0.7, 0.1, 0.9)
		dc.SetDash(4, 4)
		strokeRect(dc, mv.To)
		dc.SetDash()

		dc.SetRGBA(0.95, 0.8, 0.1, 0.9)
		arrow(dc, mv.From.Center(), mv.To.Center())
	}

	return dc.Image()
}

func strokeRect(dc *gg.Context, r geometry.Rect) {
	dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	dc.Stroke()
}

// arrow draws a line from a to b with a small head at b.
func arrow(dc *gg.Context, a, b geometry.Point) {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	dc.DrawLine(ax, ay, bx, by)
	dc.Stroke()

	const headLen = 8.0
	theta := math.Atan2(by-ay, bx-ax)
	for _, da := range []float64{math.Pi - 0.5, math.Pi + 0.5} {
		dc.DrawLine(bx, by, bx+headLen*math.Cos(theta+da), by+headLen*math.Sin(theta+da))
		dc.Stroke()
	}
}
