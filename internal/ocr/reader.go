package ocr

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"labelmover/internal/geometry"
)

// Reader recognizes label text inside box rectangles. The zero value is not
// usable; construct with NewReader.
type Reader struct {
	language string

	// inset shrinks the OCR crop so the red border itself does not feed
	// the recognizer.
	inset int
}

// NewReader returns a label reader for the given Tesseract language code
// ("eng" covers the usual identifier-style labels).
func NewReader(language string) *Reader {
	if language == "" {
		language = "eng"
	}
	return &Reader{language: language, inset: 3}
}

// Available reports whether a working Tesseract installation is present.
func Available() bool {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// ReadLabel crops the interior of rect from img, runs OCR on it and returns
// the normalized label text. An empty string with nil error means the box
// has no readable text.
func (r *Reader) ReadLabel(img image.Image, rect geometry.Rect) (string, error) {
	inner := rect.Expand(-r.inset)
	if inner.Empty() {
		return "", nil
	}
	cropped := imaging.Crop(img, inner.ToImage())

	// Tesseract wants a file path.
	tmp, err := os.CreateTemp("", "label-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := imaging.Save(cropped, tmpPath); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("set segmentation mode: %w", err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return Normalize(text), nil
}

// Normalize canonicalizes raw OCR output into a comparable label: trimmed,
// uppercased, inner whitespace collapsed to single underscores, and
// characters outside [A-Z0-9_-] dropped. Labels are equipment identifiers,
// not prose.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ToUpper(raw))
	joined := strings.Join(fields, "_")

	var b strings.Builder
	for _, c := range joined {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteRune(c)
		}
	}
	return b.String()
}
