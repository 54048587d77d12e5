package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docverify/internal/document"
)

func TestDecode(t *testing.T) {
	pngData := encodePNG(t, solidImage(640, 480, color.RGBA{255, 0, 0, 255}))
	jpegData := encodeJPEG(t, solidImage(800, 600, color.RGBA{0, 0, 255, 255}))

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantPixel  string
		wantWidth  int
		wantHeight int
	}{
		{"png", pngData, "png", "rgba", 640, 480},
		{"jpeg", jpegData, "jpeg", "ycbcr", 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, a.Format)
			assert.Equal(t, tt.wantPixel, a.PixelFormat)
			assert.Equal(t, tt.wantWidth, a.Width)
			assert.Equal(t, tt.wantHeight, a.Height)
			assert.Equal(t, len(tt.data), a.ByteLength)
			assert.Equal(t, tt.data, a.Data)
		})
	}
}

func TestDecodeOwnsData(t *testing.T) {
	data := encodePNG(t, solidImage(320, 240, color.White))
	a, err := Decode(data)
	require.NoError(t, err)

	data[0] = 0
	assert.NotEqual(t, data[0], a.Data[0], "artifact must keep its own copy")
}

func TestDecodeResolution(t *testing.T) {
	tests := []struct {
		width, height int
		wantErr       bool
	}{
		{320, 240, false},
		{319, 240, true},
		{320, 239, true},
		{100, 1000, true},
		{1000, 100, true},
		{1, 1, true},
	}

	for _, tt := range tests {
		img := solidImage(tt.width, tt.height, color.White)
		for name, data := range map[string][]byte{
			"png":  encodePNG(t, img),
			"jpeg": encodeJPEG(t, img),
		} {
			_, err := Decode(data)
			if tt.wantErr {
				assert.ErrorIs(t, err, document.ErrResolutionTooSmall, "%s %dx%d", name, tt.width, tt.height)
			} else {
				assert.NoError(t, err, "%s %dx%d", name, tt.width, tt.height)
			}
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("not an image at all"),
		"truncated": encodePNG(t, solidImage(640, 480, color.White))[:64],
	} {
		_, err := Decode(data)
		assert.ErrorIs(t, err, document.ErrDecode, name)
	}
}

func TestDecodePayload(t *testing.T) {
	data := encodePNG(t, solidImage(400, 300, color.Black))
	std := base64.StdEncoding.EncodeToString(data)

	var wrapped strings.Builder
	for i := 0; i < len(std); i += 76 {
		end := i + 76
		if end > len(std) {
			end = len(std)
		}
		wrapped.WriteString(std[i:end])
		wrapped.WriteString("\r\n")
	}

	payloads := map[string]string{
		"standard":  std,
		"unpadded":  strings.TrimRight(std, "="),
		"url safe":  base64.URLEncoding.EncodeToString(data),
		"data url":  "data:image/png;base64," + std,
		"wrapped":   wrapped.String(),
		"roundtrip": EncodePayload(data),
	}
	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			a, err := DecodePayload(p)
			require.NoError(t, err)
			assert.Equal(t, 400, a.Width)
			assert.Equal(t, "png", a.Format)
		})
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	for name, p := range map[string]string{
		"empty":        "",
		"not base64":   "!!!***",
		"data url raw": "data:image/png,abc",
		"not an image": base64.StdEncoding.EncodeToString([]byte("hello world")),
	} {
		_, err := DecodePayload(p)
		assert.ErrorIs(t, err, document.ErrDecode, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solidImage(640, 480, color.White)), 0o600))

	a, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 640, Height: 480, Format: "png", PixelFormat: "rgba", ByteLength: a.ByteLength}, a.Info())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDecodeConcurrent(t *testing.T) {
	data := encodeJPEG(t, cardImage(640, 480, image.Rect(100, 100, 500, 350)))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Decode(data)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
