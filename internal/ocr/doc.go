// Package ocr reads the text printed inside detected label boxes using
// Tesseract (via gosseract/v2).
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// OCR is optional for the pipeline: when Tesseract is unavailable boxes keep
// their position-based identities, which is enough for everything but
// recognizing a relocated box by name.
package ocr
