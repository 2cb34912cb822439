package imgutil

import (
	"errors"
	"image"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("nil image: got %v, want ErrMalformedImage", err)
	}
	if err := Validate(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("zero-size image: got %v, want ErrMalformedImage", err)
	}
	if err := Validate(image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Errorf("valid image: got %v, want nil", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("missing file should error")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))

	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b := loaded.Bounds()
	if b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("dimensions: got %dx%d, want 32x16", b.Dx(), b.Dy())
	}
}
