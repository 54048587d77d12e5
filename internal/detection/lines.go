package detection

import (
	"image"
	"math"
	"sort"
)

// Line represents a detected line segment.
type Line struct {
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
	Length       float64 `json:"length"`
	AngleDegrees float64 `json:"angle_degrees"`
}

// IsHorizontal reports whether the line is within tol degrees of horizontal.
func (l Line) IsHorizontal(tol float64) bool {
	a := math.Mod(math.Abs(l.AngleDegrees), 180)
	return a <= tol || a >= 180-tol
}

// IsVertical reports whether the line is within tol degrees of vertical.
func (l Line) IsVertical(tol float64) bool {
	a := math.Mod(math.Abs(l.AngleDegrees), 180)
	return math.Abs(a-90) <= tol
}

// maxLines caps the number of segments returned.
const maxLines = 50

// DetectLines finds straight segments in a binary edge map with the Hough
// transform.
//
// Parameters:
//   - edges: Binary edge map, non-zero pixels are edges.
//   - minLength: Minimum segment length in pixels. Peaks need at least
//     minLength/2 votes and at least minLength supporting edge pixels.
//
// Lines are returned strongest first, at most 50 of them.
func DetectLines(edges *image.Gray, minLength int) []Line {
	mask, width, height := edgeMask(edges)
	origin := edges.Bounds().Min

	maxDist := int(math.Sqrt(float64(width*width+height*height))) + 1
	const numAngles = 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	var cosT, sinT [numAngles]float64
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		cosT[theta] = math.Cos(angle)
		sinT[theta] = math.Sin(angle)
	}

	points := make([]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y][x] {
				continue
			}
			points = append(points, Point{X: x, Y: y})
			for theta := 0; theta < numAngles; theta++ {
				rho := float64(x)*cosT[theta] + float64(y)*sinT[theta]
				rhoIdx := int(math.Round(rho)) + maxDist
				if rhoIdx >= 0 && rhoIdx < maxDist*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)
	threshold := maxInt(minLength/2, 1)

	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			votes := accumulator[rhoIdx][theta]
			if votes < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 && accumulator[nr][nt] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	lines := make([]Line, 0)
	for _, pk := range peaks {
		if len(lines) >= maxLines {
			break
		}

		cosA := cosT[pk.theta]
		sinA := sinT[pk.theta]
		rho := float64(pk.rho)

		// Trace the edge pixels that lie on this line.
		support := 0
		lo, hi := math.MaxFloat64, -math.MaxFloat64
		var start, end Point
		for _, p := range points {
			if math.Abs(float64(p.X)*cosA+float64(p.Y)*sinA-rho) >= 2.0 {
				continue
			}
			support++
			// Position along the line direction (-sin, cos).
			d := -float64(p.X)*sinA + float64(p.Y)*cosA
			if d < lo {
				lo = d
				start = p
			}
			if d > hi {
				hi = d
				end = p
			}
		}
		if support < minLength {
			continue
		}

		dx := float64(end.X - start.X)
		dy := float64(end.Y - start.Y)
		length := math.Sqrt(dx*dx + dy*dy)
		if length < float64(minLength) {
			continue
		}

		lines = append(lines, Line{
			Start:        Point{X: start.X + origin.X, Y: start.Y + origin.Y},
			End:          Point{X: end.X + origin.X, Y: end.Y + origin.Y},
			Length:       math.Round(length*10) / 10,
			AngleDegrees: math.Round(math.Atan2(dy, dx)*180/math.Pi*10) / 10,
		})
	}
	return lines
}
