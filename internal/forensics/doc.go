// Package forensics scores how likely a frame is a photograph of a physical
// document rather than a screen capture, printout or edited image.
//
// Four independent checks contribute to the score:
//
//	capture_metadata       EXIF and PNG text metadata      weight 0.25
//	document_boundary      card-shaped outline in frame    weight 0.30
//	moire_pattern          screen interference in spectrum weight 0.25
//	reflection_comparison  glare movement between frames   weight 0.20
//
// The reflection check needs a second frame taken at a different tilt and
// is skipped when there is none. The aggregate is the weighted mean of the
// checks that ran, so a skipped check neither helps nor hurts.
//
// Checks run concurrently and are isolated: a panicking check is recorded
// as failed with score 0 and the others still complete.
package forensics
