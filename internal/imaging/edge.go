package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// Luma converts an image to a row-major grid of luminance values in [0,1]
// using ITU-R BT.601 weights. The grid origin is the image's Min point.
func Luma(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			gray[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return gray
}

// EdgeMap performs Canny edge detection and returns a binary map where
// edge pixels are 255 and everything else is 0. The map's origin is (0,0)
// regardless of the source bounds.
//
// thresholdLow and thresholdHigh are gradient magnitudes on a 0-255 scale.
// Pixels above thresholdHigh are always edges; pixels between the two are
// edges only when they touch a strong pixel.
//
// The source is smoothed with bild's Gaussian blur, differentiated with
// Sobel kernels and thinned by non-maximum suppression along the gradient
// direction before the hysteresis pass.
//
// For photographed documents thresholdLow=50, thresholdHigh=150 keeps the
// card outline while dropping most print texture.
func EdgeMap(img image.Image, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	l := Luma(blur.Gaussian(img, blurRadius))
	mag, dir := gradients(l, width, height)
	thin := suppress(mag, dir, width, height)

	low := float64(thresholdLow) / 255
	high := float64(thresholdHigh) / 255
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := thin[y][x]
			if v >= high || (v >= low && hasStrongNeighbor(thin, x, y, width, height, high)) {
				result.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return result
}

// blurRadius is the Gaussian radius applied before differentiation.
const blurRadius = 1.0

// gradients returns the Sobel magnitude and direction of every pixel,
// replicating border pixels.
func gradients(l [][]float64, width, height int) (mag, dir [][]float64) {
	at := func(x, y int) float64 {
		return l[clamp(y, 0, height-1)][clamp(x, 0, width-1)]
	}
	mag = make([][]float64, height)
	dir = make([][]float64, height)
	for y := 0; y < height; y++ {
		mag[y] = make([]float64, width)
		dir[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			mag[y][x] = math.Hypot(gx, gy)
			dir[y][x] = math.Atan2(gy, gx)
		}
	}
	return mag, dir
}

// suppress keeps only pixels that are local maxima across the edge. The
// outermost rows and columns are always dropped.
func suppress(mag, dir [][]float64, width, height int) [][]float64 {
	// Neighbour offsets for gradient directions quantized to 0, 45, 90
	// and 135 degrees.
	offsets := [4][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}

	out := make([][]float64, height)
	for y := range out {
		out[y] = make([]float64, width)
	}
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			a := dir[y][x]
			if a < 0 {
				a += math.Pi
			}
			bin := int(math.Floor(a/(math.Pi/4)+0.5)) % 4
			dx, dy := offsets[bin][0], offsets[bin][1]
			m := mag[y][x]
			if m >= mag[y+dy][x+dx] && m >= mag[y-dy][x-dx] {
				out[y][x] = m
			}
		}
	}
	return out
}

func hasStrongNeighbor(m [][]float64, x, y, width, height int, thresh float64) bool {
	for py := max(y-1, 0); py <= min(y+1, height-1); py++ {
		for px := max(x-1, 0); px <= min(x+1, width-1); px++ {
			if m[py][px] >= thresh {
				return true
			}
		}
	}
	return false
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	return min(max(val, lo), hi)
}
