package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop(t *testing.T) {
	img := solidImage(200, 100, color.White)

	tests := []struct {
		name    string
		region  image.Rectangle
		scale   float64
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"native", image.Rect(10, 20, 110, 70), 1, 100, 50, false},
		{"upscale", image.Rect(0, 50, 200, 100), 2, 400, 100, false},
		{"zero scale", image.Rect(0, 0, 50, 50), 0, 50, 50, false},
		{"outside", image.Rect(150, 0, 250, 50), 1, 0, 0, true},
		{"empty", image.Rect(10, 10, 10, 40), 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crop(img, tt.region, tt.scale)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestDownscale(t *testing.T) {
	small := solidImage(300, 200, color.White)
	assert.Same(t, small, Downscale(small, 480, 480))

	big := Downscale(solidImage(1600, 1000, color.White), 480, 480)
	assert.Equal(t, 480, big.Bounds().Dx())
	assert.Equal(t, 300, big.Bounds().Dy())
}

func TestResizeExact(t *testing.T) {
	got := ResizeExact(solidImage(640, 480, color.White), 16, 12)
	assert.Equal(t, image.Rect(0, 0, 16, 12), got.Bounds())
}

func TestBottomBand(t *testing.T) {
	b := image.Rect(0, 0, 400, 300)
	assert.Equal(t, image.Rect(0, 210, 400, 300), BottomBand(b, 0.3))
	assert.Equal(t, b, BottomBand(b, 0))
	assert.Equal(t, image.Rect(0, 0, 50, 60), Pad(image.Rect(5, 5, 45, 55), 10, image.Rect(0, 0, 50, 60)))
}
