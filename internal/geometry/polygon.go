package geometry

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// edgeEpsilon is the tolerance, relative to edge length, under which a point
// is treated as lying on a polygon edge.
const edgeEpsilon = 1e-9

// Polygon is a region bounded by a simple closed polygon.
//
// The boundary runs through the vertices in order and closes from the last
// vertex back to the first. Vertices are stored as given; no winding order is
// required.
type Polygon struct {
	id       string
	vertices []Point
	ring     orb.Ring
	bounds   image.Rectangle
}

// NewPolygon creates a polygon region from an ordered list of vertices.
//
// Parameters:
//   - id: Unique identifier of the region.
//   - vertices: Boundary vertices in pixel coordinates. At least 3 are
//     required. The slice is copied.
//
// Returns:
//   - *Polygon: The region.
//   - error: A *GeometryError wrapping ErrTooFewVertices if fewer than 3
//     vertices are given, or ErrNonFinite if a coordinate is NaN or infinite.
//
// The polygon is expected to be simple (non-self-intersecting). This is not
// verified; a self-intersecting boundary is evaluated with the even-odd rule.
func NewPolygon(id string, vertices []Point) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, &GeometryError{
			RegionID: id,
			Kind:     ErrTooFewVertices,
			Detail:   fmt.Sprintf("got %d", len(vertices)),
		}
	}
	for i, v := range vertices {
		if !finite(v.X, v.Y) {
			return nil, &GeometryError{
				RegionID: id,
				Kind:     ErrNonFinite,
				Detail:   fmt.Sprintf("vertex %d is (%g, %g)", i, v.X, v.Y),
			}
		}
	}

	verts := make([]Point, len(vertices))
	copy(verts, vertices)

	ring := make(orb.Ring, len(verts))
	for i, v := range verts {
		ring[i] = orb.Point{v.X, v.Y}
	}

	b := ring.Bound()
	return &Polygon{
		id:       id,
		vertices: verts,
		ring:     ring,
		bounds:   pixelBounds(b.Min[0], b.Min[1], b.Max[0], b.Max[1]),
	}, nil
}

// NewRectangle creates an axis-aligned rectangular region covering r.
//
// Following image conventions r.Max is exclusive, so the rectangle's corner
// vertices are r.Min and r.Max minus one pixel. The result is a Polygon and
// behaves exactly like one.
func NewRectangle(id string, r image.Rectangle) (*Polygon, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, &GeometryError{
			RegionID: id,
			Kind:     ErrDegenerateRectangle,
			Detail:   r.String(),
		}
	}
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X-1), float64(r.Max.Y-1)
	return NewPolygon(id, []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}})
}

// ID returns the region identifier.
func (p *Polygon) ID() string { return p.id }

// Vertices returns a copy of the boundary vertices.
func (p *Polygon) Vertices() []Point {
	out := make([]Point, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Bounds returns the pixel rectangle enclosing the polygon.
func (p *Polygon) Bounds() image.Rectangle { return p.bounds }

// Contains reports whether pt lies inside the polygon or on its boundary.
//
// # Algorithm
//
//  1. Edge test: pt is on the boundary if it is collinear with an edge
//     (cross product within tolerance) and between the edge's endpoints.
//  2. Ray casting: otherwise the even-odd crossing test from orb/planar
//     decides. RingContains also treats vertices and edges as inside, the
//     explicit edge test only guards against rounding on slanted edges.
func (p *Polygon) Contains(pt Point) bool {
	if p.onBoundary(pt) {
		return true
	}
	return planar.RingContains(p.ring, orb.Point{pt.X, pt.Y})
}

// onBoundary reports whether pt lies on any polygon edge.
func (p *Polygon) onBoundary(pt Point) bool {
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		if onSegment(pt, a, b) {
			return true
		}
	}
	return false
}

// onSegment reports whether p lies on the closed segment a-b.
func onSegment(p, a, b Point) bool {
	if p.X < math.Min(a.X, b.X) || p.X > math.Max(a.X, b.X) ||
		p.Y < math.Min(a.Y, b.Y) || p.Y > math.Max(a.Y, b.Y) {
		return false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	cross := (p.X-a.X)*dy - (p.Y-a.Y)*dx
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p == a
	}
	return math.Abs(cross)/length <= edgeEpsilon*math.Max(1, length)
}

// Mask rasterizes the polygon onto a canvas of the given bounds.
func (p *Polygon) Mask(canvas image.Rectangle) *image.Gray {
	return rasterize(canvas, p.bounds, p.Contains)
}

// Draw strokes the polygon outline onto dst, or fills it when thickness is
// negative.
func (p *Polygon) Draw(dst *image.RGBA, c color.Color, thickness float64) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(c)
	dc.MoveTo(p.vertices[0].X, p.vertices[0].Y)
	for _, v := range p.vertices[1:] {
		dc.LineTo(v.X, v.Y)
	}
	dc.ClosePath()
	if thickness < 0 {
		dc.Fill()
		return
	}
	dc.SetLineWidth(thickness)
	dc.Stroke()
}
