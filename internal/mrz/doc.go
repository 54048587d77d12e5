// Package mrz parses the three-line, thirty-column machine-readable zone
// (ICAO 9303 TD1) printed on the front of digital citizen cards and
// resident foreigner cards.
//
// Parsing is strict about shape and lenient about content. A block that is
// not exactly 3×30 characters from the A–Z, 0–9, '<' alphabet is rejected
// with document.ErrMalformedMRZ. A check digit that does not match costs
// confidence but never rejects the record, because a single misread
// character is the common case with camera captures.
//
// # Check digits
//
// Each protected field is scored character by character with the repeating
// weights 7, 3, 1. Digits count as their value, letters A–Z as 10–35 and
// the filler '<' as 0. The check digit is the weighted sum modulo 10.
//
// # Confidence
//
// A record starts at 100 and loses a fixed 15 points for each failed field
// check (document number, birth date, expiry date). The composite check
// covers the same characters as the field checks, so it is only charged
// when every field check passed. One misread protected character therefore
// costs exactly one penalty. Confidence never drops below 10.
package mrz
