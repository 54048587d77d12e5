package forensics

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
)

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func canvas(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), c)
	return img
}

// cardScene is a light ID-1 shaped card on a dark table.
func cardScene() *image.RGBA {
	img := canvas(480, 360, color.Gray{Y: 40})
	fill(img, image.Rect(80, 70, 400, 272), color.Gray{Y: 210})
	return img
}

// noiseScene is uniform random texture with no structure.
func noiseScene(seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, 480, 360))
	for i := range img.Pix {
		img.Pix[i] = uint8(96 + rng.Intn(64))
	}
	return img
}

// gratingScene is a diagonal sinusoid, the spectral signature of a pixel
// grid beating against a camera sensor.
func gratingScene() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			v := 128 + 80*math.Cos(2*math.Pi*(0.15*float64(x)+0.09*float64(y)))
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v))})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func artifactOf(t *testing.T, data []byte) *imaging.Artifact {
	t.Helper()
	art, err := imaging.Decode(data)
	require.NoError(t, err)
	return art
}

// tiffASCII builds a little-endian TIFF stream whose first IFD holds the
// given ASCII tags.
func tiffASCII(tags map[uint16]string) []byte {
	ids := make([]int, 0, len(tags))
	for id := range tags {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var head, data bytes.Buffer
	le := binary.LittleEndian
	head.WriteString("II")
	_ = binary.Write(&head, le, uint16(42))
	_ = binary.Write(&head, le, uint32(8))
	_ = binary.Write(&head, le, uint16(len(ids)))

	dataStart := 8 + 2 + 12*len(ids) + 4
	for _, id := range ids {
		val := append([]byte(tags[uint16(id)]), 0)
		_ = binary.Write(&head, le, uint16(id))
		_ = binary.Write(&head, le, uint16(2))
		_ = binary.Write(&head, le, uint32(len(val)))
		if len(val) <= 4 {
			inline := make([]byte, 4)
			copy(inline, val)
			head.Write(inline)
			continue
		}
		_ = binary.Write(&head, le, uint32(dataStart+data.Len()))
		data.Write(val)
	}
	_ = binary.Write(&head, le, uint32(0))
	return append(head.Bytes(), data.Bytes()...)
}

// withExif inserts an APP1 Exif segment after the JPEG SOI marker.
func withExif(jpg, tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xff, 0xe1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := append([]byte{}, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

// withChunk inserts an ancillary chunk after the PNG IHDR chunk.
func withChunk(pngData []byte, kind string, body []byte) []byte {
	chunk := make([]byte, 4, 12+len(body))
	binary.BigEndian.PutUint32(chunk, uint32(len(body)))
	chunk = append(chunk, kind...)
	chunk = append(chunk, body...)
	crc := make([]byte, 4)
	binary.BigEndian.PutUint32(crc, crc32.ChecksumIEEE(append([]byte(kind), body...)))
	chunk = append(chunk, crc...)

	const ihdrEnd = 8 + 25
	out := append([]byte{}, pngData[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, pngData[ihdrEnd:]...)
}

func evaluate(t *testing.T, e *Engine, primary, secondary []byte) Report {
	t.Helper()
	in := Input{Primary: artifactOf(t, primary)}
	if secondary != nil {
		in.Secondary = artifactOf(t, secondary)
	}
	return e.Evaluate(context.Background(), in)
}

func checkNamed(r Report, name string) (document.Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return document.Check{}, false
}
