// Package tracking locates a single moving object in grayscale video frames.
//
// A Localizer keeps a running background estimate built from every frame it
// has seen and, for each new frame, reports where the object most likely is.
// It works on the current frame and the background model only; no history of
// earlier frames is kept.
//
// # Pipeline
//
// Each call to Locate runs the same steps:
//
//  1. Background subtraction: a per-pixel running Gaussian (BackgroundModel)
//     marks pixels that differ from the background estimate.
//  2. Morphology: an optional closing pass fills gaps inside blobs, an
//     opening pass removes speckle noise, and a final dilation restores the
//     footprint lost to erosion.
//  3. Contours: connected foreground components are labeled and the outer
//     boundary of each is traced.
//  4. Selection: the largest contour wins if its area reaches MinArea.
//     Otherwise every contour at or above NoiseFloor is pooled, so a small or
//     partly occluded animal is still found while isolated noise is not.
//  5. Centroid: the area-weighted centroid m10/m00, m01/m00 of the selected
//     contour (or pool) is the reported position.
//
// # Misses
//
// A frame with no usable contour, or whose selected contour has zero area, is
// a miss. Misses are ordinary results (Detection.Position is nil), not errors.
// The background model keeps learning on every frame, so transient misses
// clear up by themselves.
//
// # Thread Safety
//
// A Localizer owns mutable state and must be driven by one goroutine at a
// time. Use one Localizer per video stream.
package tracking
