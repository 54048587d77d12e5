package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"unicode"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/docverify/internal/document"
)

const (
	// MinWidth and MinHeight are the smallest frame the pipeline accepts.
	// Barcode and OCR engines degrade unpredictably below this.
	MinWidth  = 320
	MinHeight = 240

	// MaxPixels bounds the decoded size of a frame.
	MaxPixels = 50_000_000
)

// Artifact is a validated, decoded frame.
//
// An Artifact owns a private copy of the encoded bytes and is never
// modified after Decode returns, so it may be read from any number of
// goroutines.
type Artifact struct {
	// Data is the encoded image exactly as received.
	Data []byte

	// Image is the decoded frame.
	Image image.Image

	Width  int
	Height int

	// Format is the registered decoder name: "jpeg", "png", "gif",
	// "webp" or "bmp".
	Format string

	// PixelFormat names the in-memory layout of Image, for example
	// "ycbcr" for most JPEGs or "nrgba" for PNGs with alpha.
	PixelFormat string

	// ByteLength is len(Data).
	ByteLength int
}

// Info is the metadata of an Artifact without the pixel data.
type Info struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	PixelFormat string `json:"pixel_format"`
	ByteLength  int    `json:"byte_length"`
}

// Info returns the artifact metadata.
func (a *Artifact) Info() Info {
	return Info{
		Width:       a.Width,
		Height:      a.Height,
		Format:      a.Format,
		PixelFormat: a.PixelFormat,
		ByteLength:  a.ByteLength,
	}
}

// DecodePayload decodes a base64 text payload into an Artifact.
//
// The payload may use the standard or URL-safe alphabet, with or without
// padding, may contain line breaks, and may carry a data URL prefix such as
// "data:image/jpeg;base64,". Invalid text wraps document.ErrDecode.
func DecodePayload(payload string) (*Artifact, error) {
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %v", document.ErrDecode, err)
	}
	return Decode(data)
}

// Decode validates and decodes an encoded image.
//
// The image header is read first and frames smaller than MinWidth×MinHeight
// fail with document.ErrResolutionTooSmall before any pixel is decoded.
// Data that no registered decoder accepts fails with document.ErrDecode.
func Decode(data []byte) (*Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", document.ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrDecode, err)
	}
	if cfg.Width < MinWidth || cfg.Height < MinHeight {
		return nil, fmt.Errorf("%w: %dx%d, minimum is %dx%d",
			document.ErrResolutionTooSmall, cfg.Width, cfg.Height, MinWidth, MinHeight)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", document.ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrDecode, err)
	}

	owned := make([]byte, len(data))
	copy(owned, data)
	b := img.Bounds()
	return &Artifact{
		Data:        owned,
		Image:       img,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Format:      format,
		PixelFormat: pixelFormat(img),
		ByteLength:  len(owned),
	}, nil
}

// LoadFile reads and decodes an image file.
func LoadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(data)
}

// EncodePayload is the inverse of DecodePayload for raw bytes.
func EncodePayload(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ";base64,")
		if i < 0 {
			return nil, fmt.Errorf("data URL is not base64")
		}
		s = s[i+len(";base64,"):]
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func pixelFormat(img image.Image) string {
	switch img.(type) {
	case *image.RGBA:
		return "rgba"
	case *image.NRGBA:
		return "nrgba"
	case *image.RGBA64:
		return "rgba64"
	case *image.NRGBA64:
		return "nrgba64"
	case *image.YCbCr:
		return "ycbcr"
	case *image.NYCbCrA:
		return "nycbcra"
	case *image.Gray:
		return "gray"
	case *image.Gray16:
		return "gray16"
	case *image.Paletted:
		return "paletted"
	case *image.CMYK:
		return "cmyk"
	}
	return "unknown"
}
