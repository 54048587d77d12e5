// Package imaging holds the pixel-level building blocks of the pipeline:
// ingestion of encoded frames, Canny edge maps, cropping and resampling,
// OCR preprocessing and perceptual lightness.
//
// # Ingestion
//
// Decode and DecodePayload are the only way a frame enters the pipeline.
// They read the image header before decoding pixels so undersized frames
// are rejected cheaply, and return an immutable Artifact that downstream
// stages share without copying.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are image.Rectangle values: Min is inclusive, Max is exclusive. Grids
// returned by Luma and LightnessGrid are indexed [row][column].
//
// # Thread Safety
//
// Every function is stateless and safe to call concurrently on the same
// source image, as long as nobody writes to that image.
package imaging
