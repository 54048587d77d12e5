// Package extraction turns a decoded frame into an identity record.
//
// The document type selects exactly one extraction method:
//
//   - barcode: decode the 2-D barcode on the back of a legacy card and
//     parse its fixed-layout record.
//   - text_block: locate the machine-readable zone at the bottom of the
//     card, read it with OCR and parse it with check digit verification.
//
// There is no fallback from one family to the other. Every failure, whether
// a capability is missing, nothing was found or the parser rejected what was
// read, is reported inside the Outcome together with a hint the client can
// show to the person holding the camera. Extract never returns an error.
package extraction
