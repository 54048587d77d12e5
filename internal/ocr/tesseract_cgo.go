//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var log = logrus.StandardLogger().WithField("package", "ocr")

// Tesseract is a Reader backed by libtesseract through gosseract.
type Tesseract struct {
	cfg Config
	sem *semaphore.Weighted
}

// NewTesseract returns a Tesseract reader. It does not touch the engine;
// use Info to probe availability.
func NewTesseract(cfg Config) *Tesseract {
	cfg = cfg.withDefaults()
	return &Tesseract{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent))}
}

// Recognize performs OCR on img.
//
// Word bounding boxes are reported in img's coordinate space. If box
// extraction fails, the full text is still returned with no regions.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("%w: set tessdata path: %v", ErrUnavailable, err)
		}
	}
	if err := client.SetLanguage(t.cfg.Language); err != nil {
		return nil, fmt.Errorf("%w: set language: %v", ErrUnavailable, err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if opts.SingleBlock {
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			return nil, fmt.Errorf("failed to set page segmentation: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &Result{FullText: text, Regions: []TextRegion{}}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		log.WithError(err).Debug("word boxes unavailable")
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Regions = append(result.Regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	b := img.Bounds()
	result.offset(b.Min.X, b.Min.Y)

	return result, nil
}

// Info reports the engine version, or why it cannot run.
func (t *Tesseract) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	info := Info{Backend: "gosseract", Language: t.cfg.Language}
	if t.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			info.Error = err.Error()
			return info
		}
	}
	if err := client.SetLanguage(t.cfg.Language); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Version = client.Version()
	info.Available = info.Version != ""
	return info
}
