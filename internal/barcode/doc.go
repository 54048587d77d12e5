// Package barcode is the 2-D barcode reading capability used by the
// barcode extraction path.
//
// Decoders return every symbol they can read as raw payload bytes; they do
// not interpret the payload. Three implementations exist:
//
//   - ZXing decodes QR Code and Data Matrix symbols in-process with gozxing.
//   - Remote posts the frame as PNG to an HTTP decode service, which is how
//     PDF417 symbols are read.
//   - Chain tries several decoders in order and returns the first symbols
//     found.
//
// A decoder that finds nothing returns ErrNotFound. A decoder that cannot
// run at all returns an error wrapping ErrUnavailable.
package barcode
