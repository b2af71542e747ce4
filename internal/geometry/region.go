package geometry

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Point is a 2D position in pixel space.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Region is a labeled zone that can test containment, rasterize itself and
// draw its boundary.
//
// Implementations must be immutable: Contains and Mask depend only on the
// region's geometry and their arguments. The occupancy engine and every other
// caller use regions exclusively through this interface, so new shapes only
// need to implement it.
type Region interface {
	// ID returns the region's unique identifier.
	ID() string

	// Contains reports whether p lies inside the region or on its boundary.
	Contains(p Point) bool

	// Bounds returns the smallest integer rectangle holding every pixel that
	// Contains can accept. Max is exclusive.
	Bounds() image.Rectangle

	// Mask returns a raster with the same bounds as canvas where pixels
	// inside the region are 255 and all others are 0.
	Mask(canvas image.Rectangle) *image.Gray

	// Draw renders the region boundary onto dst using the given color and
	// line thickness in pixels. A negative thickness fills the region.
	Draw(dst *image.RGBA, c color.Color, thickness float64)
}

// Sentinel kinds carried by GeometryError, usable with errors.Is.
var (
	ErrTooFewVertices      = errors.New("polygon needs at least 3 vertices")
	ErrNonPositiveRadius   = errors.New("circle radius must be positive")
	ErrDegenerateRectangle = errors.New("rectangle must have positive width and height")
	ErrNonFinite           = errors.New("coordinates must be finite")
	ErrEmptyID             = errors.New("region id must not be empty")
	ErrDuplicateID         = errors.New("duplicate region id")
)

// GeometryError reports a region that could not be constructed.
type GeometryError struct {
	RegionID string
	Kind     error
	Detail   string
}

func (e *GeometryError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("region %q: %v", e.RegionID, e.Kind)
	}
	return fmt.Sprintf("region %q: %v (%s)", e.RegionID, e.Kind, e.Detail)
}

func (e *GeometryError) Unwrap() error {
	return e.Kind
}

// rasterize builds a mask by evaluating contains at every canvas pixel that
// falls inside bounds.
func rasterize(canvas, bounds image.Rectangle, contains func(Point) bool) *image.Gray {
	mask := image.NewGray(canvas)
	area := bounds.Intersect(canvas)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if contains(Point{X: float64(x), Y: float64(y)}) {
				mask.Pix[mask.PixOffset(x, y)] = 255
			}
		}
	}
	return mask
}

// maxExtent bounds pixel coordinates so that very large regions still convert
// to a valid rectangle. It is far beyond any frame size.
const maxExtent = 1 << 30

// pixelBounds converts a float extent to the integer rectangle of pixels it
// covers, with an exclusive Max. The extent is clamped to ±maxExtent.
func pixelBounds(minX, minY, maxX, maxY float64) image.Rectangle {
	return image.Rect(
		clampPixel(math.Ceil(minX)),
		clampPixel(math.Ceil(minY)),
		clampPixel(math.Floor(maxX))+1,
		clampPixel(math.Floor(maxY))+1,
	)
}

func clampPixel(v float64) int {
	return int(math.Max(-maxExtent, math.Min(maxExtent, v)))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
