// Package detection finds the geometric features the pipeline reasons
// about: the outline of a card, long straight edges, and the band of
// machine-readable text along the bottom of a card.
//
// Rectangle and line detection work on binary edge maps produced by
// imaging.EdgeMap, so the same map can be reused for both. Text band
// detection works on luminance directly because printed glyphs are better
// described by stroke density than by closed contours.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// Only axis-aligned rectangles are reported. A card photographed at a
// strong angle is still found by line detection, which is why callers use
// lines as a fallback when no rectangle qualifies.
package detection
