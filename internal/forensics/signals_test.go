package forensics

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docverify/internal/detection"
)

func TestBoundaryCheck(t *testing.T) {
	// Four border segments that never meet, as when the card corners are
	// out of frame or rounded away.
	lines := canvas(400, 300, color.White)
	fill(lines, image.Rect(80, 60, 320, 63), color.Black)
	fill(lines, image.Rect(80, 240, 320, 243), color.Black)
	fill(lines, image.Rect(40, 90, 43, 210), color.Black)
	fill(lines, image.Rect(360, 90, 363, 210), color.Black)

	square := canvas(480, 360, color.Gray{Y: 40})
	fill(square, image.Rect(140, 80, 340, 280), color.Gray{Y: 210})

	tests := []struct {
		name       string
		img        image.Image
		wantScore  int
		wantPassed bool
	}{
		{"card", cardScene(), boundaryCard, true},
		{"square", square, boundaryRectangle, true},
		{"border lines", lines, boundaryLines, true},
		{"blank", canvas(480, 360, color.Gray{Y: 128}), boundaryNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := boundaryCheck(context.Background(), Input{Primary: artifactOf(t, encodePNG(t, tt.img))})
			assert.Equal(t, tt.wantScore, c.Score, c.Detail)
			assert.Equal(t, tt.wantPassed, c.Passed)
		})
	}
}

func TestBorderLines(t *testing.T) {
	h := func(y int) detection.Line {
		return detection.Line{Start: detection.Point{X: 0, Y: y}, End: detection.Point{X: 300, Y: y}, AngleDegrees: 0}
	}
	v := func(x int) detection.Line {
		return detection.Line{Start: detection.Point{X: x, Y: 0}, End: detection.Point{X: x, Y: 200}, AngleDegrees: 90}
	}

	assert.True(t, borderLines([]detection.Line{h(20), h(180), v(30), v(370)}, 400, 200))
	// A thick edge detected twice is not two borders.
	assert.False(t, borderLines([]detection.Line{h(20), h(22), v(30), v(370)}, 400, 200))
	assert.False(t, borderLines([]detection.Line{h(20), h(180), v(30)}, 400, 200))
	assert.False(t, borderLines(nil, 400, 200))
}

func TestNormalizedAspect(t *testing.T) {
	landscape := detection.Rectangle{Width: 317, Height: 200}
	portrait := detection.Rectangle{Width: 200, Height: 317}
	assert.InDelta(t, normalizedAspect(landscape), normalizedAspect(portrait), 1e-9)
	assert.InDelta(t, 0, aspectError(landscape), 0.01)
}

func TestFFT(t *testing.T) {
	impulse := make([]complex128, 8)
	impulse[0] = 1
	fft(impulse)
	for _, v := range impulse {
		assert.InDelta(t, 1, real(v), 1e-12)
		assert.InDelta(t, 0, imag(v), 1e-12)
	}

	n := 64
	wave := make([]complex128, n)
	for i := range wave {
		wave[i] = complex(math.Cos(2*math.Pi*5*float64(i)/float64(n)), 0)
	}
	fft(wave)
	for k, v := range wave {
		if k == 5 || k == n-5 {
			assert.InDelta(t, float64(n)/2, cmplx.Abs(v), 1e-9)
		} else {
			assert.InDelta(t, 0, cmplx.Abs(v), 1e-9)
		}
	}
}

func TestFFT2Constant(t *testing.T) {
	m := make([][]complex128, 4)
	for y := range m {
		m[y] = []complex128{1, 1, 1, 1}
	}
	fft2(m)
	assert.InDelta(t, 16, real(m[0][0]), 1e-12)
	for y := range m {
		for x := range m[y] {
			if x != 0 || y != 0 {
				assert.InDelta(t, 0, cmplx.Abs(m[y][x]), 1e-12)
			}
		}
	}
}

func TestMoireScore(t *testing.T) {
	tests := map[float64]int{
		0:    95,
		6:    95,
		13:   50,
		20:   5,
		1000: 5,
	}
	for ratio, want := range tests {
		assert.Equal(t, want, moireScore(ratio), "ratio %v", ratio)
	}
}

func TestMoireCheck(t *testing.T) {
	tests := []struct {
		name       string
		img        image.Image
		wantPassed bool
	}{
		{"flat", canvas(480, 360, color.Gray{Y: 128}), true},
		{"noise", noiseScene(1), true},
		{"screen grating", gratingScene(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := moireCheck(context.Background(), Input{Primary: artifactOf(t, encodePNG(t, tt.img))})
			assert.Equal(t, tt.wantPassed, c.Passed, c.Detail)
		})
	}
}

func TestMoireGratingScoresLow(t *testing.T) {
	ratio, ok := peakRatio(context.Background(), gratingScene())
	require.True(t, ok)
	assert.Greater(t, ratio, ratioScreen)
}

func TestPeakRatioSmallImage(t *testing.T) {
	_, ok := peakRatio(context.Background(), image.NewGray(image.Rect(0, 0, 20, 20)))
	assert.False(t, ok)
}

func TestNearLattice(t *testing.T) {
	assert.True(t, nearLattice(0, 32))
	assert.True(t, nearLattice(33, 32))
	assert.True(t, nearLattice(-31, 32))
	assert.False(t, nearLattice(16, 32))
	assert.False(t, nearLattice(5, 0))
}

// glareScene is a mid-grey card with a bright hotspot centred at x.
func glareScene(x int) *image.RGBA {
	img := canvas(480, 360, color.Gray{Y: 90})
	fill(img, image.Rect(x-40, 140, x+40, 220), color.Gray{Y: 250})
	return img
}

func TestReflectionCheck(t *testing.T) {
	tests := []struct {
		name       string
		primary    image.Image
		secondary  image.Image
		wantPassed bool
		wantScore  int
	}{
		{"identical frames", glareScene(120), glareScene(120), false, reflectionStatic},
		{"exposure change only", canvas(480, 360, color.Gray{Y: 100}), canvas(480, 360, color.Gray{Y: 140}), false, reflectionStatic},
		{"glare moved", glareScene(120), glareScene(360), true, reflectionCeil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := reflectionCheck(context.Background(), Input{
				Primary:   artifactOf(t, encodePNG(t, tt.primary)),
				Secondary: artifactOf(t, encodePNG(t, tt.secondary)),
			})
			assert.Equal(t, tt.wantPassed, c.Passed, c.Detail)
			assert.Equal(t, tt.wantScore, c.Score, c.Detail)
		})
	}
}

func TestCompareGridsResolutionIndependent(t *testing.T) {
	small := artifactOf(t, encodePNG(t, glareScene(120)))
	large := artifactOf(t, encodePNG(t, imageScale(glareScene(120), 2)))
	change, shift := compareGrids(lightnessGrid(small), lightnessGrid(large))
	assert.Less(t, change, staticChange)
	assert.Less(t, shift, staticShift)
}

func imageScale(src *image.RGBA, k int) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*k, b.Dy()*k))
	for y := 0; y < b.Dy()*k; y++ {
		for x := 0; x < b.Dx()*k; x++ {
			dst.Set(x, y, src.At(x/k, y/k))
		}
	}
	return dst
}
