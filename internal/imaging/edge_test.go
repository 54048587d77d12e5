package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func countEdges(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v == 255 {
			n++
		}
	}
	return n
}

func TestEdgeMapSolidImage(t *testing.T) {
	m := EdgeMap(solidImage(64, 48, color.White), 50, 150)
	assert.Equal(t, image.Rect(0, 0, 64, 48), m.Bounds())
	assert.Zero(t, countEdges(m))
}

func TestEdgeMapFindsCardOutline(t *testing.T) {
	card := image.Rect(40, 30, 200, 130)
	m := EdgeMap(cardImage(240, 160, card), 50, 150)

	assert.Greater(t, countEdges(m), 300)

	// Every column along the top edge has an edge pixel within two rows.
	missing := 0
	for x := card.Min.X + 4; x < card.Max.X-4; x++ {
		found := false
		for y := card.Min.Y - 2; y <= card.Min.Y+2; y++ {
			if m.GrayAt(x, y).Y == 255 {
				found = true
			}
		}
		if !found {
			missing++
		}
	}
	assert.Zero(t, missing)

	// The flat interior stays empty.
	for y := card.Min.Y + 10; y < card.Max.Y-10; y++ {
		for x := card.Min.X + 10; x < card.Max.X-10; x++ {
			if m.GrayAt(x, y).Y != 0 {
				t.Fatalf("unexpected edge at (%d,%d)", x, y)
			}
		}
	}
}

func TestEdgeMapOffsetBounds(t *testing.T) {
	src := cardImage(120, 100, image.Rect(30, 30, 90, 70))
	sub := src.SubImage(image.Rect(10, 10, 110, 90))
	m := EdgeMap(sub, 50, 150)
	assert.Equal(t, image.Rect(0, 0, 100, 80), m.Bounds())
	assert.Greater(t, countEdges(m), 0)
}

func TestEdgeMapTinyImage(t *testing.T) {
	m := EdgeMap(solidImage(2, 2, color.Black), 50, 150)
	assert.Zero(t, countEdges(m))
}

func TestLuma(t *testing.T) {
	g := Luma(solidImage(3, 2, color.White))
	assert.Len(t, g, 2)
	assert.Len(t, g[0], 3)
	assert.InDelta(t, 1.0, g[1][2], 1e-9)

	g = Luma(solidImage(1, 1, color.RGBA{255, 0, 0, 255}))
	assert.InDelta(t, 0.299, g[0][0], 1e-9)
}
