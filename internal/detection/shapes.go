package detection

import (
	"image"
	"sort"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func boundsOf(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rectangle is a closed contour whose bounding box is well covered by edge
// pixels.
type Rectangle struct {
	Bounds Bounds `json:"bounds"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Area   int    `json:"area"`

	// Coverage is the fraction (0.0 to 1.0) of the bounding box perimeter
	// that has a contour pixel within coverageSlack pixels of it.
	Coverage float64 `json:"coverage"`
}

// Aspect returns the long side divided by the short side.
func (r Rectangle) Aspect() float64 {
	w, h := float64(r.Width), float64(r.Height)
	if w == 0 || h == 0 {
		return 0
	}
	if w < h {
		w, h = h, w
	}
	return w / h
}

// coverageSlack is how far, in pixels, a contour pixel may sit from the
// bounding box edge and still count as covering it. Canny on a blurred step
// leaves edges one to two pixels thick and slightly inset.
const coverageSlack = 2

// FindRectangles groups the edge pixels of a binary edge map into
// 8-connected contours and reports those whose bounding box perimeter is
// traced by the contour.
//
// Parameters:
//   - edges: Binary edge map, non-zero pixels are edges.
//   - minArea: Minimum bounding box area in square pixels.
//   - minCoverage: Minimum perimeter coverage (0.0 to 1.0). A clean card
//     outline scores above 0.9; text and texture blobs rarely reach 0.5.
//
// Results are sorted by area, largest first.
//
// # Coverage
//
// Comparing contour length to the expected perimeter breaks down when the
// edge is more than one pixel thick. Instead, every position along the four
// sides of the bounding box is checked for a pixel of the same contour
// within coverageSlack pixels across the side. The covered fraction is
// robust to thickness and penalises shapes such as circles, which touch
// their bounding box only at four points.
func FindRectangles(edges *image.Gray, minArea int, minCoverage float64) []Rectangle {
	mask, width, height := edgeMask(edges)
	labels, contours := labelContours(mask, width, height)

	rectangles := make([]Rectangle, 0)
	for id, contour := range contours {
		if len(contour) < 4 {
			continue
		}

		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			minX = minInt(minX, p.X)
			maxX = maxInt(maxX, p.X)
			minY = minInt(minY, p.Y)
			maxY = maxInt(maxY, p.Y)
		}

		rectWidth := maxX - minX + 1
		rectHeight := maxY - minY + 1
		area := rectWidth * rectHeight
		if area < minArea {
			continue
		}

		coverage := perimeterCoverage(labels, id+1, minX, minY, maxX, maxY, width, height)
		if coverage < minCoverage {
			continue
		}

		b := edges.Bounds()
		rectangles = append(rectangles, Rectangle{
			Bounds: Bounds{
				X1: minX + b.Min.X,
				Y1: minY + b.Min.Y,
				X2: maxX + 1 + b.Min.X,
				Y2: maxY + 1 + b.Min.Y,
			},
			Width:    rectWidth,
			Height:   rectHeight,
			Area:     area,
			Coverage: coverage,
		})
	}

	sort.Slice(rectangles, func(i, j int) bool {
		return rectangles[i].Area > rectangles[j].Area
	})
	return rectangles
}

// perimeterCoverage walks the four sides of a bounding box and counts the
// positions that have a pixel labelled id within coverageSlack across the
// side.
func perimeterCoverage(labels [][]int, id, minX, minY, maxX, maxY, width, height int) float64 {
	hit := func(x, y int) bool {
		return x >= 0 && x < width && y >= 0 && y < height && labels[y][x] == id
	}
	covered, total := 0, 0

	for x := minX; x <= maxX; x++ {
		for _, edgeY := range [2]int{minY, maxY} {
			total++
			for d := -coverageSlack; d <= coverageSlack; d++ {
				if hit(x, edgeY+d) {
					covered++
					break
				}
			}
		}
	}
	for y := minY; y <= maxY; y++ {
		for _, edgeX := range [2]int{minX, maxX} {
			total++
			for d := -coverageSlack; d <= coverageSlack; d++ {
				if hit(edgeX+d, y) {
					covered++
					break
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total)
}

// edgeMask converts a binary edge image to a boolean grid with origin (0,0).
func edgeMask(edges *image.Gray) ([][]bool, int, int) {
	b := edges.Bounds()
	width, height := b.Dx(), b.Dy()
	mask := make([][]bool, height)
	for y := 0; y < height; y++ {
		mask[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			mask[y][x] = edges.GrayAt(x+b.Min.X, y+b.Min.Y).Y != 0
		}
	}
	return mask, width, height
}

// labelContours finds 8-connected components of edge pixels. Components
// smaller than 10 pixels are discarded as noise. labels[y][x] holds the
// 1-based index of the kept contour a pixel belongs to, or 0.
func labelContours(edges [][]bool, width, height int) ([][]int, [][]Point) {
	labels := make([][]int, height)
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		labels[y] = make([]int, width)
		visited[y] = make([]bool, width)
	}

	contours := make([][]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make([]Point, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) < 10 {
					continue
				}
				contours = append(contours, contour)
				id := len(contours)
				for _, p := range contour {
					labels[p.Y][p.X] = id
				}
			}
		}
	}
	return labels, contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Uses 8-connectivity.
func floodFill(edges, visited [][]bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
