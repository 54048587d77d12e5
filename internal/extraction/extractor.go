package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docverify/internal/barcode"
	"github.com/ironsheep/docverify/internal/document"
	"github.com/ironsheep/docverify/internal/fixedlayout"
	"github.com/ironsheep/docverify/internal/imaging"
	"github.com/ironsheep/docverify/internal/location"
	"github.com/ironsheep/docverify/internal/mrz"
	"github.com/ironsheep/docverify/internal/ocr"
)

var log = logrus.StandardLogger().WithField("package", "extraction")

// Method names how a record was extracted.
type Method string

const (
	MethodBarcode   Method = "barcode"
	MethodTextBlock Method = "text_block"
)

// MethodFor returns the extraction method for a document family.
func MethodFor(f document.Family) Method {
	switch f {
	case document.FamilyBarcode:
		return MethodBarcode
	case document.FamilyTextBlock:
		return MethodTextBlock
	}
	return ""
}

const (
	hintBarcode = "Photograph the back of the document flat and in focus, " +
		"with the whole barcode inside the frame and no glare on it."
	hintTextBlock = "Photograph the back of the card so the three lines of " +
		"machine-readable text at the bottom are sharp and fully visible."
	hintUnavailable = "Automatic reading is temporarily unavailable; " +
		"enter the document details manually."
	hintDocumentType = "Choose the document type that matches the card."
)

// Outcome is the result of one extraction attempt.
type Outcome struct {
	Method Method
	// Record is nil when extraction failed.
	Record  *document.IdentityRecord
	Elapsed time.Duration
	// Err is the non-fatal cause of a failed extraction.
	Err error
	// Hint is remediation advice for a failed extraction.
	Hint string
}

// Succeeded reports whether a record was extracted.
func (o Outcome) Succeeded() bool {
	return o.Record != nil
}

// Config holds the capabilities an Extractor uses.
type Config struct {
	// Decoder reads barcodes. Nil disables the barcode method.
	Decoder barcode.Decoder
	// Reader reads text. Nil disables the text-block method.
	Reader ocr.Reader
	// Locations resolves places of issue in barcode records.
	Locations *location.Table
	// MRZ configures the accepted zone literals. The zero value accepts
	// Colombian identity cards.
	MRZ mrz.Options
}

// Extractor runs extraction. It holds no per-request state and may be used
// from any number of goroutines as long as its capabilities can.
type Extractor struct {
	decoder barcode.Decoder
	reader  ocr.Reader
	fixed   *fixedlayout.Parser
	zone    *mrz.Parser
}

// New returns an Extractor.
func New(cfg Config) *Extractor {
	opts := cfg.MRZ
	if len(opts.DocumentCodes) == 0 {
		opts = mrz.DefaultOptions(opts.Now)
	}
	return &Extractor{
		decoder: cfg.Decoder,
		reader:  cfg.Reader,
		fixed:   fixedlayout.NewParser(cfg.Locations),
		zone:    mrz.NewParser(opts),
	}
}

// Extract reads the identity record of a document of type t from art.
func (e *Extractor) Extract(ctx context.Context, art *imaging.Artifact, t document.Type) Outcome {
	start := time.Now()
	family, err := t.Family()
	if err != nil {
		return Outcome{Err: err, Hint: hintDocumentType, Elapsed: time.Since(start)}
	}

	out := Outcome{Method: MethodFor(family)}
	switch family {
	case document.FamilyBarcode:
		out.Record, out.Err = e.extractBarcode(ctx, art)
		out.Hint = hintBarcode
	case document.FamilyTextBlock:
		out.Record, out.Err = e.extractTextBlock(ctx, art)
		out.Hint = hintTextBlock
	}
	out.Elapsed = time.Since(start)

	entry := log.WithField("method", out.Method).WithField("elapsed", out.Elapsed)
	switch {
	case out.Err == nil:
		out.Hint = ""
		entry.WithField("number", out.Record.MaskedNumber()).
			WithField("confidence", out.Record.Confidence).
			Debug("extraction succeeded")
	case errors.Is(out.Err, barcode.ErrUnavailable) || errors.Is(out.Err, ocr.ErrUnavailable):
		out.Hint = hintUnavailable
		entry.WithError(out.Err).Warn("extraction capability unavailable")
	default:
		entry.WithError(out.Err).Debug("extraction failed")
	}
	return out
}

func (e *Extractor) extractBarcode(ctx context.Context, art *imaging.Artifact) (*document.IdentityRecord, error) {
	if e.decoder == nil {
		return nil, fmt.Errorf("%w: no decoder configured", barcode.ErrUnavailable)
	}
	symbols, err := e.decoder.Decode(ctx, art.Image)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, s := range symbols {
		rec, err := e.fixed.Parse(s.Raw)
		if err == nil {
			return rec, nil
		}
		log.WithField("format", s.Format).WithError(err).Debug("symbol is not an identity record")
		lastErr = err
	}
	if lastErr == nil {
		lastErr = barcode.ErrNotFound
	}
	return nil, lastErr
}
