//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// Tesseract is unavailable in builds without cgo.
type Tesseract struct {
	cfg Config
}

// NewTesseract returns a reader that always fails with ErrUnavailable.
func NewTesseract(cfg Config) *Tesseract {
	return &Tesseract{cfg: cfg.withDefaults()}
}

// Recognize always fails with ErrUnavailable.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	return nil, ErrUnavailable
}

// Info reports that no engine is compiled in.
func (t *Tesseract) Info() Info {
	return Info{
		Backend:  "none",
		Language: t.cfg.Language,
		Error:    "built without cgo; tesseract is not linked",
	}
}
