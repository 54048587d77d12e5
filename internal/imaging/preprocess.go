package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// OCRContrast is the contrast boost applied before binarization.
const OCRContrast = 0.4

// PrepareForOCR turns a photographed text region into a clean black on
// white bitmap: grayscale, contrast boost, sharpen, then a global threshold
// chosen with Otsu's method.
func PrepareForOCR(img image.Image) *image.Gray {
	gray := effect.Grayscale(img)
	contrasted := adjust.Contrast(gray, OCRContrast)
	sharpened := effect.Sharpen(contrasted)
	return segment.Threshold(sharpened, OtsuLevel(sharpened))
}

// OtsuLevel returns the threshold that maximizes between-class variance
// of the image's luminance histogram.
func OtsuLevel(img image.Image) uint8 {
	var hist [256]int
	b := img.Bounds()
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
			hist[lum]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var (
		sumB    float64
		weightB int
		best    float64
		level   uint8 = 128
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sumAll - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			level = uint8(t + 1)
		}
	}
	return level
}
