package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable means the OCR engine cannot run in this build or on this
// host.
var ErrUnavailable = errors.New("ocr engine unavailable")

// MRZWhitelist is the character set of a machine-readable zone.
const MRZWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in one image.
type Result struct {
	// FullText is all recognized text with original line breaks.
	FullText string `json:"full_text"`

	// Regions contains individual words. May be empty when the engine
	// cannot report boxes; FullText is still set.
	Regions []TextRegion `json:"regions"`
}

// Options tunes a single recognition.
type Options struct {
	// Whitelist restricts the characters the engine may output. Empty
	// allows everything.
	Whitelist string

	// SingleBlock treats the image as one uniform block of text, which is
	// what a cropped machine-readable zone is.
	SingleBlock bool
}

// Reader recognizes text in an image.
type Reader interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error)
}

// Info describes the OCR backend.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
	Language  string `json:"language"`
}

// Config configures a Tesseract reader.
type Config struct {
	// Language is the traineddata name, "eng" by default.
	Language string

	// TessdataPrefix overrides the directory holding traineddata files.
	TessdataPrefix string

	// MaxConcurrent bounds simultaneous recognitions; values below 1 mean 1.
	MaxConcurrent int
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	return c
}

// offset shifts every region's bounds by (dx, dy).
func (r *Result) offset(dx, dy int) {
	for i := range r.Regions {
		r.Regions[i].Bounds.X1 += dx
		r.Regions[i].Bounds.Y1 += dy
		r.Regions[i].Bounds.X2 += dx
		r.Regions[i].Bounds.Y2 += dy
	}
}
