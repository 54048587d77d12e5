package forensics

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
)

const (
	// moireWindow is the largest analysis window side.
	moireWindow = 256

	// The annulus, in fractions of the Nyquist radius, where screen pixel
	// grids beat against the camera sensor.
	annulusInner = 0.2
	annulusOuter = 0.95

	// isolation is how much a peak must exceed the spectrum at the same
	// angle a few bins further in and out. Edges spread energy along a
	// radial line; interference concentrates it in a point.
	isolation     = 4.0
	isolationStep = 4

	ratioClean     = 6.0
	ratioScreen    = 20.0
	ratioPassBelow = 12.0

	moireBest  = 95
	moireWorst = 5
)

func moireCheck(ctx context.Context, in Input) document.Check {
	ratio, ok := peakRatio(ctx, in.Primary.Image)
	if !ok {
		return document.Check{Passed: true, Score: moireBest, Detail: "frame too small for spectral analysis"}
	}
	score := moireScore(ratio)
	if ratio < ratioPassBelow {
		return document.Check{
			Passed: true,
			Score:  score,
			Detail: fmt.Sprintf("no periodic interference (peak ratio %.1f)", ratio),
		}
	}
	return document.Check{
		Score:  score,
		Detail: fmt.Sprintf("periodic interference consistent with a screen (peak ratio %.1f)", ratio),
	}
}

// moireScore maps a peak ratio linearly from moireBest at ratioClean to
// moireWorst at ratioScreen.
func moireScore(ratio float64) int {
	switch {
	case ratio <= ratioClean:
		return moireBest
	case ratio >= ratioScreen:
		return moireWorst
	}
	f := (ratio - ratioClean) / (ratioScreen - ratioClean)
	return int(math.Round(moireBest - f*(moireBest-moireWorst)))
}

// peakRatio returns the strongest isolated high-frequency peak of the
// centred window's power spectrum relative to the median power at the same
// radius. ok is false when the image is smaller than the minimum window.
func peakRatio(ctx context.Context, img image.Image) (float64, bool) {
	b := img.Bounds()
	n := moireWindow
	for n > b.Dx() || n > b.Dy() {
		n /= 2
	}
	if n < 32 {
		return 0, false
	}

	luma := imaging.Luma(img)
	x0 := (b.Dx() - n) / 2
	y0 := (b.Dy() - n) / 2

	hann := make([]float64, n)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}

	var mean float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			mean += luma[y0+y][x0+x]
		}
	}
	mean /= float64(n * n)

	m := make([][]complex128, n)
	for y := 0; y < n; y++ {
		m[y] = make([]complex128, n)
		for x := 0; x < n; x++ {
			v := (luma[y0+y][x0+x] - mean) * hann[x] * hann[y]
			m[y][x] = complex(v, 0)
		}
	}
	if ctx.Err() != nil {
		return 0, false
	}
	fft2(m)

	// Centred power spectrum, box-smoothed over 3×3 bins.
	power := make([][]float64, n)
	for y := range power {
		power[y] = make([]float64, n)
		for x := range power[y] {
			c := m[(y+n/2)%n][(x+n/2)%n]
			power[y][x] = real(c)*real(c) + imag(c)*imag(c)
		}
	}
	smoothed := boxSmooth(power)

	half := float64(n / 2)
	rings := make([][]float64, n/2+1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			r := math.Hypot(float64(x)-half, float64(y)-half)
			if ri := int(math.Round(r)); ri < len(rings) {
				rings[ri] = append(rings[ri], smoothed[y][x])
			}
		}
	}
	medians := make([]float64, len(rings))
	for i, ring := range rings {
		medians[i] = median(ring)
	}

	block := n / 8
	best := 0.0
	for y := 1; y < n-1; y++ {
		for x := 1; x < n-1; x++ {
			u, v := float64(x)-half, float64(y)-half
			r := math.Hypot(u, v)
			if r < annulusInner*half || r > annulusOuter*half {
				continue
			}
			// Compression block grids peak on the lattice of n/8 bins.
			if nearLattice(x-n/2, block) && nearLattice(y-n/2, block) {
				continue
			}
			ri := int(math.Round(r))
			if medians[ri] <= 0 {
				continue
			}
			p := smoothed[y][x]
			if !isolated(smoothed, x, y, u, v, r, half, p) {
				continue
			}
			best = math.Max(best, p/medians[ri])
		}
	}
	return best, true
}

func isolated(s [][]float64, x, y int, u, v, r, half, p float64) bool {
	n := len(s)
	for _, d := range []float64{-isolationStep, isolationStep} {
		k := (r + d) / r
		nx := int(math.Round(u*k + half))
		ny := int(math.Round(v*k + half))
		if nx < 0 || ny < 0 || nx >= n || ny >= n {
			continue
		}
		if s[ny][nx]*isolation > p {
			return false
		}
	}
	return true
}

func nearLattice(v, spacing int) bool {
	if spacing <= 0 {
		return false
	}
	m := ((v % spacing) + spacing) % spacing
	return m <= 1 || m >= spacing-1
}

func boxSmooth(p [][]float64) [][]float64 {
	n := len(p)
	out := make([][]float64, n)
	for y := 0; y < n; y++ {
		out[y] = make([]float64, n)
		for x := 0; x < n; x++ {
			var sum float64
			var cnt int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					yy, xx := y+dy, x+dx
					if yy < 0 || xx < 0 || yy >= n || xx >= n {
						continue
					}
					sum += p[yy][xx]
					cnt++
				}
			}
			out[y][x] = sum / float64(cnt)
		}
	}
	return out
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	return s[len(s)/2]
}
