package document

import "errors"

var (
	// ErrDecode means the payload is not valid encoded image data.
	ErrDecode = errors.New("image decode failed")

	// ErrResolutionTooSmall means the image is below the minimum resolution.
	ErrResolutionTooSmall = errors.New("image resolution too small")

	// ErrMalformedPayload means a barcode payload failed structural validation.
	ErrMalformedPayload = errors.New("malformed barcode payload")

	// ErrMalformedMRZ means a machine-readable text block is not 3 lines of 30 characters.
	ErrMalformedMRZ = errors.New("malformed machine-readable zone")

	// ErrUnexpectedDocumentFamily means the literal document fields do not
	// belong to the family the parser was invoked for.
	ErrUnexpectedDocumentFamily = errors.New("unexpected document family")

	// ErrUnknownDocumentType means the document type selector is not supported.
	ErrUnknownDocumentType = errors.New("unknown document type")

	// ErrInternal wraps unexpected failures caught at a component boundary.
	ErrInternal = errors.New("internal failure")
)

// IsCallerError reports whether err is something the caller can correct by
// sending different input.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrResolutionTooSmall) ||
		errors.Is(err, ErrUnknownDocumentType)
}
