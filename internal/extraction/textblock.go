package extraction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/docverify/internal/detection"
	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/imaging"
	"github.com/ironsheep/docverify/internal/mrz"
	"github.com/ironsheep/docverify/internal/ocr"
)

const (
	// bandMargin is added around the detected zone before cropping so
	// glyphs touching the band edge are not clipped.
	bandMargin = 8

	// zoneTargetHeight is the crop height, in pixels, the zone is scaled
	// towards before OCR. Tesseract reads best at roughly 30 px per line.
	zoneTargetHeight = 150
	maxZoneScale     = 4.0

	// zoneFraction is the share of the frame height searched when no
	// band is detected. The zone fills roughly the lower third of a TD1
	// card.
	zoneFraction = 0.4
)

var errNoZone = fmt.Errorf("%w: no machine-readable zone found", document.ErrMalformedMRZ)

// extractTextBlock reads the zone from the detected band first and from
// the whole frame second. The most specific parser error seen is returned
// when both fail.
func (e *Extractor) extractTextBlock(ctx context.Context, art *imaging.Artifact) (*document.IdentityRecord, error) {
	if e.reader == nil {
		return nil, fmt.Errorf("%w: no reader configured", ocr.ErrUnavailable)
	}

	prepared := imaging.PrepareForOCR(art.Image)

	var attempts []func() (image.Image, ocr.Options, error)
	if band, ok := detection.FindTextBand(prepared); ok {
		log.WithField("band", band.Bounds).WithField("rows", band.Rows).Debug("located text band")
		attempts = append(attempts, func() (image.Image, ocr.Options, error) {
			crop, err := zoneCrop(prepared, band.Bounds.Rect())
			return crop, ocr.Options{Whitelist: ocr.MRZWhitelist, SingleBlock: true}, err
		})
	} else {
		attempts = append(attempts, func() (image.Image, ocr.Options, error) {
			crop, err := zoneCrop(prepared, imaging.BottomBand(prepared.Bounds(), zoneFraction))
			return crop, ocr.Options{Whitelist: ocr.MRZWhitelist}, err
		})
	}
	attempts = append(attempts, func() (image.Image, ocr.Options, error) {
		return prepared, ocr.Options{Whitelist: ocr.MRZWhitelist}, nil
	})

	best := errNoZone
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, opts, err := attempt()
		if err != nil {
			log.WithError(err).Debug("skipping text attempt")
			continue
		}
		res, err := e.reader.Recognize(ctx, img, opts)
		if err != nil {
			return nil, err
		}
		rec, err := e.parseZone(res.FullText)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(best, document.ErrUnexpectedDocumentFamily) && err != errNoZone {
			best = err
		}
	}
	return nil, best
}

func (e *Extractor) parseZone(text string) (*document.IdentityRecord, error) {
	lines := mrz.FindLines(text)
	if len(lines) < 3 {
		return nil, errNoZone
	}
	return e.zone.Parse(strings.Join(lines, "\n"))
}

// zoneCrop cuts the band with a margin and scales it towards
// zoneTargetHeight.
func zoneCrop(img image.Image, band image.Rectangle) (image.Image, error) {
	region := imaging.Pad(band, bandMargin, img.Bounds())
	scale := 1.0
	if h := region.Dy(); h > 0 && h < zoneTargetHeight {
		scale = math.Min(float64(zoneTargetHeight)/float64(h), maxZoneScale)
	}
	return imaging.Crop(img, region, scale)
}
