// Package imgutil loads and saves drawing captures and rejects inputs the
// pipeline cannot work with.
package imgutil

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrMalformedImage reports an input that decodes to nothing usable: a nil
// image or one with a zero dimension. The pass aborts; no state changes.
var ErrMalformedImage = errors.New("malformed or empty image")

// Validate returns ErrMalformedImage when img cannot be processed.
func Validate(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image: %w", ErrMalformedImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%dx%d image: %w", b.Dx(), b.Dy(), ErrMalformedImage)
	}
	return nil
}

// Load reads and validates an image file. PNG, JPEG, GIF, TIFF and BMP are
// supported.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := Validate(img); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Save writes an image; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
