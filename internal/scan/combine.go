package scan

import (
	"math"

	"github.com/ironsheep/docverify/internal/document"
)

const (
	extractionWeight = 0.6
	forensicWeight   = 0.4

	// DefaultExtractionConfidence stands in when a record carries no
	// confidence of its own.
	DefaultExtractionConfidence = 50
)

// Combine blends extraction confidence and the forensic score as
// round(0.6·confidence + 0.4·forensic), clamped to [0, 100]. A nil
// confidence counts as DefaultExtractionConfidence.
func Combine(confidence *int, forensic int) int {
	c := DefaultExtractionConfidence
	if confidence != nil {
		c = *confidence
	}
	v := extractionWeight*float64(c) + forensicWeight*float64(forensic)
	return document.ClampScore(int(math.Round(v)))
}
