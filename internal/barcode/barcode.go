package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger().WithField("package", "barcode")

var (
	// ErrNotFound means no readable symbol was found in the frame.
	ErrNotFound = errors.New("no barcode found")

	// ErrUnavailable means the decoder cannot run, for example because the
	// remote decode service is unreachable.
	ErrUnavailable = errors.New("barcode decoder unavailable")
)

// Symbol is one decoded barcode.
type Symbol struct {
	// Format is the symbology, for example "QR_CODE" or "PDF_417".
	Format string `json:"format"`

	// Raw is the payload as bytes. Text payloads are ISO-8859-1 encoded.
	Raw []byte `json:"raw"`
}

// Decoder finds and decodes barcodes in an image.
type Decoder interface {
	Decode(ctx context.Context, img image.Image) ([]Symbol, error)
}

// Chain tries each decoder in order and returns the first non-empty result.
type Chain []Decoder

// Decode implements Decoder. When every decoder fails, the error of the
// last one is returned; ErrNotFound takes precedence over unavailability
// so a working decoder that saw nothing is not reported as an outage.
func (c Chain) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: no decoders configured", ErrUnavailable)
	}
	var lastErr error
	sawNotFound := false
	for _, d := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		symbols, err := d.Decode(ctx, img)
		if err == nil && len(symbols) > 0 {
			return symbols, nil
		}
		if err == nil || errors.Is(err, ErrNotFound) {
			sawNotFound = true
			continue
		}
		log.WithError(err).Debug("decoder in chain failed")
		lastErr = err
	}
	if sawNotFound || lastErr == nil {
		return nil, ErrNotFound
	}
	return nil, lastErr
}
