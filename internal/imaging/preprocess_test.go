package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOtsuLevelSplitsBimodal(t *testing.T) {
	img := cardImage(100, 100, image.Rect(0, 0, 50, 100))
	level := OtsuLevel(img)
	assert.Greater(t, int(level), 40)
	assert.LessOrEqual(t, int(level), 210)
}

func TestOtsuLevelUniform(t *testing.T) {
	assert.Equal(t, uint8(128), OtsuLevel(solidImage(10, 10, color.Gray{Y: 90})))
	assert.Equal(t, uint8(128), OtsuLevel(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestPrepareForOCR(t *testing.T) {
	img := solidImage(120, 40, color.Gray{Y: 200})
	for y := 15; y < 25; y++ {
		for x := 20; x < 100; x++ {
			img.Set(x, y, color.Gray{Y: 30})
		}
	}

	out := PrepareForOCR(img)
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, uint8(255), out.GrayAt(5, 5).Y, "background becomes white")
	assert.Equal(t, uint8(0), out.GrayAt(60, 20).Y, "ink becomes black")
	for _, v := range out.Pix {
		assert.True(t, v == 0 || v == 255)
	}
}
