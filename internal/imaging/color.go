package imaging

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Lightness returns the CIE L* value (0-100) of a color.
//
// Fully transparent pixels have no meaningful color and report 0.
func Lightness(c color.Color) float64 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := cf.Lab()
	return l * 100
}

// LightnessGrid divides img into cols×rows cells and returns the mean
// L* of each cell, row-major. Cells sample every step-th pixel in each
// direction; step values below 1 sample every pixel.
func LightnessGrid(img image.Image, cols, rows, step int) [][]float64 {
	if step < 1 {
		step = 1
	}
	b := img.Bounds()
	grid := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]float64, cols)
		y0 := b.Min.Y + r*b.Dy()/rows
		y1 := b.Min.Y + (r+1)*b.Dy()/rows
		for c := 0; c < cols; c++ {
			x0 := b.Min.X + c*b.Dx()/cols
			x1 := b.Min.X + (c+1)*b.Dx()/cols
			var sum float64
			var n int
			for y := y0; y < y1; y += step {
				for x := x0; x < x1; x += step {
					sum += Lightness(img.At(x, y))
					n++
				}
			}
			if n > 0 {
				grid[r][c] = sum / float64(n)
			}
		}
	}
	return grid
}
