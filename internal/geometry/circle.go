package geometry

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Circle is a region bounded by a circle.
type Circle struct {
	id     string
	center Point
	radius float64
	bounds image.Rectangle
}

// NewCircle creates a circular region.
//
// Parameters:
//   - id: Unique identifier of the region.
//   - center: Circle center in pixel coordinates.
//   - radius: Radius in pixels. Must be greater than zero.
//
// Returns a *GeometryError wrapping ErrNonPositiveRadius when radius <= 0, or
// ErrNonFinite when the center or radius is NaN or infinite.
func NewCircle(id string, center Point, radius float64) (*Circle, error) {
	if !finite(center.X, center.Y, radius) {
		return nil, &GeometryError{
			RegionID: id,
			Kind:     ErrNonFinite,
			Detail:   fmt.Sprintf("center (%g, %g), radius %g", center.X, center.Y, radius),
		}
	}
	if !(radius > 0) {
		return nil, &GeometryError{
			RegionID: id,
			Kind:     ErrNonPositiveRadius,
			Detail:   fmt.Sprintf("got %g", radius),
		}
	}
	return &Circle{
		id:     id,
		center: center,
		radius: radius,
		bounds: pixelBounds(center.X-radius, center.Y-radius, center.X+radius, center.Y+radius),
	}, nil
}

// ID returns the region identifier.
func (c *Circle) ID() string { return c.id }

// Center returns the circle center.
func (c *Circle) Center() Point { return c.center }

// Radius returns the circle radius in pixels.
func (c *Circle) Radius() float64 { return c.radius }

// Bounds returns the pixel rectangle enclosing the circle.
func (c *Circle) Bounds() image.Rectangle { return c.bounds }

// Contains reports whether p is within the radius of the center.
//
// The test compares squared distances, (p - center)² <= radius², so points at
// exactly the radius are inside and no square root or polygon approximation
// is involved.
func (c *Circle) Contains(p Point) bool {
	dx := p.X - c.center.X
	dy := p.Y - c.center.Y
	return dx*dx+dy*dy <= c.radius*c.radius
}

// Mask rasterizes the circle onto a canvas of the given bounds.
func (c *Circle) Mask(canvas image.Rectangle) *image.Gray {
	return rasterize(canvas, c.bounds, c.Contains)
}

// Draw strokes the circle outline onto dst, or fills the disc when thickness
// is negative.
func (c *Circle) Draw(dst *image.RGBA, col color.Color, thickness float64) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(col)
	dc.DrawCircle(c.center.X, c.center.Y, c.radius)
	if thickness < 0 {
		dc.Fill()
		return
	}
	dc.SetLineWidth(thickness)
	dc.Stroke()
}
