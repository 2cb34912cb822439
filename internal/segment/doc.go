// Package segment isolates the pixel classes the relocation pipeline works
// with: the red label-box borders, the white drawing background, and the
// remaining "occupied" drawing content.
//
// # Masks
//
// All masks are *image.Gray images over the same bounds as the source, with
// 255 marking a member pixel and 0 everything else. This keeps them directly
// usable with the bild morphology and threshold operations.
//
// # Red tolerance band
//
// Red border pixels are matched in HSV space rather than by exact RGB
// equality, so anti-aliased border pixels still land inside the band. The
// band is configured as a hue center with a circular tolerance plus minimum
// saturation and value floors; see Options.
package segment
