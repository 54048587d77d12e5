package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/text/encoding/charmap"
)

// ZXing decodes QR Code and Data Matrix symbols with gozxing.
type ZXing struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXing returns a local decoder.
func NewZXing() *ZXing {
	return &ZXing{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			datamatrix.NewDataMatrixReader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_CHARACTER_SET: "ISO-8859-1",
			gozxing.DecodeHintType_TRY_HARDER:    true,
		},
	}
}

// Decode implements Decoder.
//
// The frame is tried as-is and then as a contrast-boosted grayscale copy,
// which recovers symbols printed on patterned card backgrounds.
func (z *ZXing) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	variants := []func() image.Image{
		func() image.Image { return img },
		func() image.Image { return imaging.AdjustContrast(imaging.Grayscale(img), 40) },
	}
	for _, variant := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		symbols, err := z.decodeVariant(variant())
		if err != nil {
			return nil, err
		}
		if len(symbols) > 0 {
			return symbols, nil
		}
	}
	return nil, ErrNotFound
}

func (z *ZXing) decodeVariant(img image.Image) ([]Symbol, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	var symbols []Symbol
	for _, r := range z.readers {
		res, err := r.Decode(bmp, z.hints)
		r.Reset()
		if err != nil {
			var nf gozxing.NotFoundException
			if !errors.As(err, &nf) {
				log.WithError(err).Debug("symbol found but not decoded")
			}
			continue
		}
		symbols = append(symbols, Symbol{
			Format: res.GetBarcodeFormat().String(),
			Raw:    latin1(res.GetText()),
		})
	}
	return symbols, nil
}

// latin1 re-encodes decoded text to the single-byte form the payload was
// written in. Characters outside ISO-8859-1 fall back to UTF-8 bytes.
func latin1(s string) []byte {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}
