// Package scan is the document scan pipeline: it decodes the submitted
// frames, runs extraction and forensic scoring concurrently and combines
// their results into one response.
//
// Only problems the caller can fix by sending something else (an unknown
// document type, a primary frame that is not an image or is too small)
// are returned as errors. Everything else, including failed extraction,
// is a Result with Success set to false.
package scan
