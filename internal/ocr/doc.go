// Package ocr is the optical character recognition capability used by the
// text-block extraction path.
//
// Callers depend on the Reader interface. The Tesseract implementation
// wraps gosseract/v2 and needs cgo plus an installed libtesseract; builds
// without cgo get a Tesseract whose Recognize always fails with
// ErrUnavailable, so the rest of the pipeline still runs and reports the
// text path as unavailable.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The machine-readable zone uses the OCR-B font. The stock "eng" model reads
// it well once the whitelist restricts output to MRZWhitelist; a dedicated
// "mrz" or "ocrb" traineddata file can be selected with the language option.
//
// # Concurrency
//
// A gosseract client is not safe for concurrent use, so every Recognize
// call creates its own. The number of calls running at once is bounded by
// a weighted semaphore sized at construction.
package ocr
