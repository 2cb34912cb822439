package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"labelmover/internal/extract"
	"labelmover/internal/geometry"
	"labelmover/internal/plan"
	"labelmover/internal/track"
)

func TestRender(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	from := geometry.Rect{X: 50, Y: 50, Width: 60, Height: 24}
	to := geometry.Rect{X: 250, Y: 180, Width: 60, Height: 24}
	res := &plan.Result{
		Boxes: []extract.Box{
			{Rect: from, State: extract.StateOverlapping, Label: "E0_BS"},
			{Rect: geometry.Rect{X: 50, Y: 200, Width: 60, Height: 24}, State: extract.StateClear},
		},
		Moves: []track.MoveRecord{{From: from, To: to}},
	}

	out := Render(img, res)

	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds changed: %v -> %v", img.Bounds(), out.Bounds())
	}
	// The source image is untouched and the output is not blank.
	if img.RGBAAt(50, 50) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Error("Render must not mutate its input")
	}
	changed := false
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !changed; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := out.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("annotated output is blank")
	}
}
