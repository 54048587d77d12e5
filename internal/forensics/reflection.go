package forensics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
)

const (
	gridCols = 16
	gridRows = 12
	// Frames are resampled to a common size before the grid is measured so
	// frames of different resolution compare cell for cell.
	sampleWidth  = 160
	sampleHeight = 120

	// highlightShare is the fraction of brightest cells treated as glare.
	highlightShare = 0.1

	staticChange = 1.5
	staticShift  = 0.03

	reflectionStatic = 10
	reflectionFloor  = 40
	reflectionCeil   = 95
	reflectionPass   = 60
)

func reflectionCheck(_ context.Context, in Input) document.Check {
	a := lightnessGrid(in.Primary)
	b := lightnessGrid(in.Secondary)
	change, shift := compareGrids(a, b)

	if change < staticChange && shift < staticShift {
		return document.Check{
			Score:  reflectionStatic,
			Detail: fmt.Sprintf("no reflection movement between frames (change %.1f, shift %.3f)", change, shift),
		}
	}
	score := int(math.Round(float64(reflectionFloor) + 10*change + 300*shift))
	score = max(reflectionFloor, min(reflectionCeil, score))
	return document.Check{
		Passed: score >= reflectionPass,
		Score:  score,
		Detail: fmt.Sprintf("reflection moved between frames (change %.1f, shift %.3f)", change, shift),
	}
}

func lightnessGrid(a *imaging.Artifact) [][]float64 {
	small := imaging.ResizeExact(a.Image, sampleWidth, sampleHeight)
	return imaging.LightnessGrid(small, gridCols, gridRows, 1)
}

// compareGrids returns the mean absolute change in exposure-normalised
// lightness and the distance the highlight centroid moved, as a fraction of
// the grid diagonal.
func compareGrids(a, b [][]float64) (change, shift float64) {
	na, nb := normalizeExposure(a), normalizeExposure(b)
	cells := 0
	for y := range na {
		for x := range na[y] {
			change += math.Abs(na[y][x] - nb[y][x])
			cells++
		}
	}
	if cells > 0 {
		change /= float64(cells)
	}

	ax, ay := highlightCentroid(na)
	bx, by := highlightCentroid(nb)
	diag := math.Hypot(float64(gridCols), float64(gridRows))
	shift = math.Hypot(ax-bx, ay-by) / diag
	return change, shift
}

// normalizeExposure subtracts the grid mean so a global brightness change
// between frames does not count as reflection movement.
func normalizeExposure(g [][]float64) [][]float64 {
	var sum float64
	var n int
	for _, row := range g {
		for _, v := range row {
			sum += v
			n++
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}
	out := make([][]float64, len(g))
	for y, row := range g {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			out[y][x] = v - mean
		}
	}
	return out
}

// highlightCentroid is the lightness-weighted centre of the brightest cells.
func highlightCentroid(g [][]float64) (float64, float64) {
	var values []float64
	for _, row := range g {
		values = append(values, row...)
	}
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	k := int(math.Max(1, math.Round(float64(len(sorted))*highlightShare)))
	cut := sorted[k-1]
	floor := sorted[len(sorted)-1]

	var sx, sy, w float64
	for y, row := range g {
		for x, v := range row {
			if v < cut {
				continue
			}
			weight := v - floor + 1e-9
			sx += weight * (float64(x) + 0.5)
			sy += weight * (float64(y) + 0.5)
			w += weight
		}
	}
	return sx / w, sy / w
}
