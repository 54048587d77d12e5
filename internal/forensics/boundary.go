package forensics

import (
	"context"
	"fmt"
	"math"

	"github.com/ironsheep/docverify/internal/detection"
	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
)

const (
	// id1Aspect is the width/height ratio of an ID-1 card (85.60 × 53.98 mm).
	id1Aspect = 1.586

	boundaryMaxWidth  = 640
	boundaryMaxHeight = 640
	edgeLow           = 50
	edgeHigh          = 150

	// minCardFraction is the smallest share of the frame a card outline
	// may cover.
	minCardFraction = 0.05
	minCoverage     = 0.75

	// aspectTolerance is the relative aspect error still accepted as a card.
	aspectTolerance = 0.12
	// lineSeparation is the minimum distance, as a fraction of the frame
	// dimension, between two parallel border lines.
	lineSeparation = 0.2
	angleTolerance = 8.0

	boundaryCard      = 90
	boundaryRectangle = 70
	boundaryLines     = 65
	boundaryNone      = 20
)

func boundaryCheck(_ context.Context, in Input) document.Check {
	img := imaging.Downscale(in.Primary.Image, boundaryMaxWidth, boundaryMaxHeight)
	b := img.Bounds()
	frameArea := b.Dx() * b.Dy()
	edges := imaging.EdgeMap(img, edgeLow, edgeHigh)

	rects := detection.FindRectangles(edges, int(float64(frameArea)*minCardFraction), minCoverage)
	if len(rects) > 0 {
		best, bestErr := rects[0], aspectError(rects[0])
		for _, r := range rects[1:] {
			if e := aspectError(r); e < bestErr {
				best, bestErr = r, e
			}
		}
		cover := float64(best.Area) / float64(frameArea) * 100
		if bestErr <= aspectTolerance {
			return document.Check{
				Passed: true,
				Score:  boundaryCard,
				Detail: fmt.Sprintf("card-shaped boundary found (aspect %.2f, %.0f%% of frame)", normalizedAspect(best), cover),
			}
		}
		return document.Check{
			Passed: true,
			Score:  boundaryRectangle,
			Detail: fmt.Sprintf("rectangular boundary found (aspect %.2f, %.0f%% of frame)", normalizedAspect(best), cover),
		}
	}

	minLen := min(b.Dx(), b.Dy()) / 4
	if borderLines(detection.DetectLines(edges, minLen), b.Dx(), b.Dy()) {
		return document.Check{
			Passed: true,
			Score:  boundaryLines,
			Detail: "border lines found on all sides",
		}
	}
	return document.Check{
		Score:  boundaryNone,
		Detail: "no document boundary found",
	}
}

// normalizedAspect is long side over short side, so portrait and landscape
// cards compare alike.
func normalizedAspect(r detection.Rectangle) float64 {
	a := r.Aspect()
	if a > 0 && a < 1 {
		a = 1 / a
	}
	return a
}

func aspectError(r detection.Rectangle) float64 {
	return math.Abs(normalizedAspect(r)-id1Aspect) / id1Aspect
}

// borderLines reports whether lines contain two well separated
// near-horizontal lines and two well separated near-vertical ones.
func borderLines(lines []detection.Line, width, height int) bool {
	var ys, xs []float64
	for _, l := range lines {
		switch {
		case l.IsHorizontal(angleTolerance):
			ys = append(ys, float64(l.Start.Y+l.End.Y)/2)
		case l.IsVertical(angleTolerance):
			xs = append(xs, float64(l.Start.X+l.End.X)/2)
		}
	}
	return spread(ys) >= lineSeparation*float64(height) &&
		spread(xs) >= lineSeparation*float64(width)
}

func spread(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return hi - lo
}
