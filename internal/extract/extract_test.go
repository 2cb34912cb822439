package extract

import (
	"image"
	"image/color"
	"testing"

	"labelmover/internal/geometry"
)

// newMask creates an empty mask of the given size.
func newMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// drawRing draws a hollow rectangle outline of the given border thickness.
func drawRing(mask *image.Gray, r geometry.Rect, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.X; x < r.Right(); x++ {
			mask.SetGray(x, r.Y+t, color.Gray{Y: 255})
			mask.SetGray(x, r.Bottom()-1-t, color.Gray{Y: 255})
		}
		for y := r.Y; y < r.Bottom(); y++ {
			mask.SetGray(r.X+t, y, color.Gray{Y: 255})
			mask.SetGray(r.Right()-1-t, y, color.Gray{Y: 255})
		}
	}
}

func TestBoxes_SingleBox(t *testing.T) {
	mask := newMask(300, 300)
	want := geometry.Rect{X: 100, Y: 100, Width: 40, Height: 20}
	drawRing(mask, want, 2)

	boxes := Boxes(mask, DefaultOptions())
	if len(boxes) != 1 {
		t.Fatalf("got %d boxes, want 1", len(boxes))
	}
	if boxes[0].Rect != want {
		t.Errorf("rect: got %v, want %v", boxes[0].Rect, want)
	}
	if boxes[0].Coverage < 0.8 {
		t.Errorf("coverage too low: %f", boxes[0].Coverage)
	}
	if boxes[0].State != StateUnexamined {
		t.Errorf("fresh box should be unexamined, got %v", boxes[0].State)
	}
	if boxes[0].ID == "" {
		t.Error("box should carry a fingerprint")
	}
}

func TestBoxes_EmptyMask(t *testing.T) {
	boxes := Boxes(newMask(100, 100), DefaultOptions())
	if len(boxes) != 0 {
		t.Errorf("empty mask should yield no boxes, got %d", len(boxes))
	}
}

func TestBoxes_DeterministicOrder(t *testing.T) {
	mask := newMask(400, 400)
	b1 := geometry.Rect{X: 200, Y: 30, Width: 40, Height: 20}
	b2 := geometry.Rect{X: 20, Y: 30, Width: 40, Height: 20}
	b3 := geometry.Rect{X: 100, Y: 200, Width: 60, Height: 24}
	for _, r := range []geometry.Rect{b1, b2, b3} {
		drawRing(mask, r, 2)
	}

	for run := 0; run < 3; run++ {
		boxes := Boxes(mask, DefaultOptions())
		if len(boxes) != 3 {
			t.Fatalf("got %d boxes, want 3", len(boxes))
		}
		if boxes[0].Rect != b2 || boxes[1].Rect != b1 || boxes[2].Rect != b3 {
			t.Errorf("order: got %v, %v, %v", boxes[0].Rect, boxes[1].Rect, boxes[2].Rect)
		}
	}
}

func TestBoxes_NoiseRejected(t *testing.T) {
	mask := newMask(300, 300)

	// Speckle below minimum size.
	for y := 50; y < 53; y++ {
		for x := 50; x < 55; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	// Thin horizontal line: tall enough in width, far too short in height.
	for x := 100; x < 220; x++ {
		mask.SetGray(x, 150, color.Gray{Y: 255})
		mask.SetGray(x, 151, color.Gray{Y: 255})
	}
	// Square-ish ring outside the label aspect band.
	drawRing(mask, geometry.Rect{X: 200, Y: 200, Width: 30, Height: 30}, 2)

	boxes := Boxes(mask, DefaultOptions())
	if len(boxes) != 0 {
		t.Errorf("noise should be rejected, got %d boxes: %v", len(boxes), boxes)
	}
}

func TestBoxes_HaloFragmentsMerged(t *testing.T) {
	mask := newMask(200, 200)
	outer := geometry.Rect{X: 10, Y: 10, Width: 40, Height: 20}
	inner := geometry.Rect{X: 13, Y: 13, Width: 34, Height: 14}
	// Two nested rings with a 2px gap: disconnected components whose
	// rectangles overlap, as an anti-aliased halo produces.
	drawRing(mask, outer, 1)
	drawRing(mask, inner, 1)

	boxes := Boxes(mask, DefaultOptions())
	if len(boxes) != 1 {
		t.Fatalf("fragments should merge into one box, got %d", len(boxes))
	}
	if boxes[0].Rect != outer {
		t.Errorf("merged rect: got %v, want %v", boxes[0].Rect, outer)
	}
}

func TestBoxes_SeparateBoxesStaySeparate(t *testing.T) {
	mask := newMask(300, 300)
	a := geometry.Rect{X: 10, Y: 10, Width: 40, Height: 20}
	b := geometry.Rect{X: 70, Y: 12, Width: 40, Height: 20}
	drawRing(mask, a, 2)
	drawRing(mask, b, 2)

	boxes := Boxes(mask, DefaultOptions())
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[0].Rect != a || boxes[1].Rect != b {
		t.Errorf("rects: got %v, %v", boxes[0].Rect, boxes[1].Rect)
	}
}

func TestNewFingerprint(t *testing.T) {
	tol := DefaultOptions().IdentityTolerancePx
	base := geometry.Rect{X: 100, Y: 100, Width: 40, Height: 20}

	same := NewFingerprint(base, "", tol)
	if same != NewFingerprint(base, "", tol) {
		t.Error("identical rects must share a fingerprint")
	}

	// Small drift within the quantization bucket keeps the identity.
	nudged := geometry.Rect{X: 102, Y: 101, Width: 40, Height: 20}
	if NewFingerprint(nudged, "", tol) != same {
		t.Error("small drift should not change the fingerprint")
	}

	far := geometry.Rect{X: 300, Y: 100, Width: 40, Height: 20}
	if NewFingerprint(far, "", tol) == same {
		t.Error("distant rect should have a different fingerprint")
	}

	// A label pins identity regardless of position.
	if NewFingerprint(base, "E0_BS", tol) != NewFingerprint(far, "E0_BS", tol) {
		t.Error("label-based fingerprints must ignore position")
	}
}

func TestSetLabel(t *testing.T) {
	b := Box{Rect: geometry.Rect{X: 100, Y: 100, Width: 40, Height: 20}}
	b.ID = NewFingerprint(b.Rect, "", 24)

	b.SetLabel("E1_XF", 24)
	if b.Label != "E1_XF" {
		t.Errorf("label: got %q", b.Label)
	}
	if b.ID != Fingerprint("label:E1_XF") {
		t.Errorf("id: got %q", b.ID)
	}
}
