// Package geometry provides the labeled zones of a maze as immutable shapes.
//
// Every zone is a Region: it has a stable identifier and answers three
// questions about its geometry. Contains reports whether a pixel position lies
// inside the zone, Mask rasterizes the zone onto a canvas, and Draw renders the
// zone boundary onto a frame for visual debugging. Polygon and Circle are the
// two concrete variants; NewRectangle is a convenience constructor that yields
// a four-vertex Polygon.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - A pixel (x, y) is represented by the point at its integer coordinates
//
// Points are float64 so that sub-pixel centroids reported by the tracker can
// be tested without rounding.
//
// # Boundary Convention
//
// A point lying exactly on a region boundary is inside the region. For
// polygons this holds for every vertex and every point along an edge. For
// circles it holds for every point at exactly the radius from the center.
//
// # Masks
//
// Mask evaluates Contains for every pixel of the region's bounding box that
// falls on the canvas, so a mask and the containment test never disagree.
// Marked pixels are 255 and unmarked pixels are 0.
//
// # Thread Safety
//
// Regions and RegionSets never change after construction. They can be read by
// any number of goroutines at once, for example while one goroutine draws an
// overlay and another evaluates containment. Draw mutates only the frame it is
// given; callers drawing onto a shared frame must synchronize themselves.
//
// # Error Handling
//
// Constructors return a *GeometryError for geometry that cannot describe a
// zone:
//   - Polygons with fewer than 3 vertices (ErrTooFewVertices)
//   - Circles with a radius of zero or less (ErrNonPositiveRadius)
//   - Rectangles with no area (ErrDegenerateRectangle)
//   - NaN or infinite coordinates (ErrNonFinite)
//
// NewRegionSet rejects empty and duplicate identifiers. BuildRegionSet reports
// every invalid spec at once rather than stopping at the first failure.
package geometry
