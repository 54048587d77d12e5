// Package document defines the identity model shared by every stage of the
// scanning pipeline: the extracted IdentityRecord, the closed set of
// supported document types and families, the per-signal authenticity Check,
// and the error taxonomy used to classify failures.
//
// # Enumerations
//
// Fields that may be illegible on a real capture (gender, blood type) are
// modelled as closed enumerations with an explicit Unknown variant. The zero
// value of each enumeration is Unknown, so a field that was never decoded
// can never be mistaken for a decoded one.
//
// # Errors
//
// Sentinel errors are wrapped with fmt.Errorf("...: %w") at the point of
// failure and classified with errors.Is by callers:
//   - ErrDecode, ErrResolutionTooSmall: the caller sent unusable input
//   - ErrMalformedPayload, ErrMalformedMRZ: extraction failed, the request did not
//   - ErrUnexpectedDocumentFamily: the parser does not match the document
//   - ErrInternal: a recovered panic or unavailable capability
package document
