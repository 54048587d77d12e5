package detection

import (
	"image"
	"math"

	"github.com/ironsheep/docverify/internal/imaging"
)

// TextRegion is a detected block of printed text.
type TextRegion struct {
	Bounds Bounds `json:"bounds"`

	// Confidence is the mean stroke density of the band's rows relative to
	// the densest row found (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Rows is the number of text rows merged into the band.
	Rows int `json:"rows"`
}

const (
	// strokeThreshold is the luminance step (0-1) between neighbouring
	// pixels that counts as a glyph stroke.
	strokeThreshold = 0.12

	// searchFrom is the fraction of the height above which FindTextBand
	// does not look. The machine-readable zone sits in the lower part of
	// a TD1 card.
	searchFrom = 0.45
)

// FindTextBand locates the lowest block of dense printed text in img,
// which on a TD1 card is the machine-readable zone.
//
// Rows are scored by the fraction of horizontal neighbour pairs whose
// luminance differs by more than strokeThreshold; printed glyphs produce
// many such steps per row while backgrounds, photos and guilloche
// patterns produce few. Rows above half the peak density form runs, runs
// separated by small gaps are merged into bands, and the lowest band is
// returned with its horizontal extent trimmed to the columns that carry
// strokes.
//
// The second return value is false when no band qualifies.
func FindTextBand(img image.Image) (TextRegion, bool) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 8 || height < 8 {
		return TextRegion{}, false
	}
	luma := imaging.Luma(img)

	density := make([]float64, height)
	for y := 0; y < height; y++ {
		n := 0
		for x := 0; x+1 < width; x++ {
			if math.Abs(luma[y][x+1]-luma[y][x]) > strokeThreshold {
				n++
			}
		}
		density[y] = float64(n) / float64(width-1)
	}
	density = smooth(density)

	top := int(float64(height) * searchFrom)
	peak := 0.0
	for y := top; y < height; y++ {
		peak = math.Max(peak, density[y])
	}
	if peak < 0.02 {
		return TextRegion{}, false
	}
	threshold := math.Max(peak/2, 0.02)

	type run struct{ y1, y2, rows int }
	var runs []run
	for y := top; y < height; y++ {
		if density[y] < threshold {
			continue
		}
		start := y
		for y < height && density[y] >= threshold {
			y++
		}
		runs = append(runs, run{start, y, 1})
	}
	if len(runs) == 0 {
		return TextRegion{}, false
	}

	// Merge rows of text separated by narrow inter-line gaps.
	maxGap := maxInt(4, height/40)
	merged := []run{runs[0]}
	for _, r := range runs[1:] {
		last := &merged[len(merged)-1]
		if r.y1-last.y2 <= maxGap {
			last.y2 = r.y2
			last.rows++
			continue
		}
		merged = append(merged, r)
	}

	band := merged[len(merged)-1]
	if band.y2-band.y1 < 6 {
		return TextRegion{}, false
	}

	x1, x2 := columnExtent(luma, band.y1, band.y2, width)
	if x2-x1 < width/4 {
		return TextRegion{}, false
	}

	var sum float64
	for y := band.y1; y < band.y2; y++ {
		sum += density[y]
	}
	conf := sum / float64(band.y2-band.y1) / peak

	return TextRegion{
		Bounds: boundsOf(image.Rect(
			x1+bounds.Min.X, band.y1+bounds.Min.Y,
			x2+bounds.Min.X, band.y2+bounds.Min.Y,
		)),
		Confidence: math.Round(math.Min(conf, 1)*1000) / 1000,
		Rows:       band.rows,
	}, true
}

// columnExtent returns the first and one-past-last columns within rows
// [y1, y2) that contain stroke steps.
func columnExtent(luma [][]float64, y1, y2, width int) (int, int) {
	counts := make([]int, width)
	for y := y1; y < y2; y++ {
		for x := 0; x+1 < width; x++ {
			if math.Abs(luma[y][x+1]-luma[y][x]) > strokeThreshold {
				counts[x]++
			}
		}
	}
	x1, x2 := -1, -1
	for x, c := range counts {
		if c == 0 {
			continue
		}
		if x1 < 0 {
			x1 = x
		}
		x2 = x + 2
	}
	if x1 < 0 {
		return 0, 0
	}
	return x1, minInt(x2, width)
}

// smooth applies a 3-tap moving average.
func smooth(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		sum, n := v[i], 1.0
		if i > 0 {
			sum += v[i-1]
			n++
		}
		if i+1 < len(v) {
			sum += v[i+1]
			n++
		}
		out[i] = sum / n
	}
	return out
}
