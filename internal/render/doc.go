// Package render draws zone overlays on video frames for visual debugging.
//
// Overlay copies a frame and draws every region of a geometry.RegionSet on
// top of it, in the inside color when the tracked object is currently in that
// region and in the outside color otherwise. A square hit box marks the
// detected position and takes the inside color when the object is in any
// region. Region labels are drawn above each zone; circles are labelled
// centered over the disc.
//
// # Coordinate Grid
//
// With Style.GridSpacing set, a translucent grid is drawn every N pixels
// before the zones, and each intersection is labelled "x,y" when labels are
// enabled. This makes it possible to read zone vertices straight off a frame.
//
// # Output
//
// Encode returns a PNG as base64 together with its size, scaled first when a
// scale other than 1 is given. Save writes an image to disk in the format
// implied by the file extension. MaskImage turns a binary region or
// foreground mask into a viewable image.
//
// # Colors
//
// ParseColor accepts "#RRGGBB" and "#RGB", with or without the leading '#'.
//
// # Thread Safety
//
// All functions are stateless. Drawing onto the same destination image from
// several goroutines must be synchronized by the caller.
package render
