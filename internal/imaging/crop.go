package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image and optionally scales it.
//
// The region is in source coordinates and must lie inside img.Bounds().
// A non-positive scale or a scale of 1 leaves the crop at native size.
// Other scales resample with Lanczos.
func Crop(img image.Image, region image.Rectangle, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if !region.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", region, bounds)
	}
	if region.Empty() {
		return nil, fmt.Errorf("invalid crop region %v", region)
	}

	cropped := imaging.Crop(img, region)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, nil
}

// Downscale shrinks img to fit within maxWidth×maxHeight, preserving the
// aspect ratio. Images that already fit are returned unchanged.
func Downscale(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Box)
}

// ResizeExact resamples img to exactly width×height.
func ResizeExact(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}

// BottomBand returns the rectangle covering the lower fraction of bounds.
func BottomBand(bounds image.Rectangle, fraction float64) image.Rectangle {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	h := int(float64(bounds.Dy()) * fraction)
	return image.Rect(bounds.Min.X, bounds.Max.Y-h, bounds.Max.X, bounds.Max.Y)
}

// Pad grows r by margin pixels on every side, clipped to bounds.
func Pad(r image.Rectangle, margin int, bounds image.Rectangle) image.Rectangle {
	return r.Inset(-margin).Intersect(bounds)
}
