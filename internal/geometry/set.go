package geometry

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"go.uber.org/multierr"
)

// ErrUnknownShape is returned for a Spec whose shape is not recognized.
var ErrUnknownShape = errors.New("unknown region shape")

// Shape names accepted in Spec.Shape.
const (
	ShapePolygon   = "polygon"
	ShapeCircle    = "circle"
	ShapeRectangle = "rectangle"
)

// RegionSet is an ordered collection of regions with unique identifiers.
//
// Order is preserved for deterministic iteration and drawing. It has no
// meaning for containment; every region is evaluated on its own.
type RegionSet struct {
	regions []Region
	index   map[string]int
}

// NewRegionSet creates a set from the given regions, in order.
//
// Every region must have a non-empty identifier that no other region in the
// set uses. All violations are reported together.
func NewRegionSet(regions ...Region) (*RegionSet, error) {
	set := &RegionSet{
		regions: make([]Region, 0, len(regions)),
		index:   make(map[string]int, len(regions)),
	}

	var errs error
	for _, r := range regions {
		id := r.ID()
		if id == "" {
			errs = multierr.Append(errs, &GeometryError{Kind: ErrEmptyID})
			continue
		}
		if _, dup := set.index[id]; dup {
			errs = multierr.Append(errs, &GeometryError{RegionID: id, Kind: ErrDuplicateID})
			continue
		}
		set.index[id] = len(set.regions)
		set.regions = append(set.regions, r)
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

// Len returns the number of regions.
func (s *RegionSet) Len() int { return len(s.regions) }

// Regions returns the regions in insertion order. The returned slice is a
// copy; the regions themselves are immutable.
func (s *RegionSet) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// IDs returns the region identifiers in insertion order.
func (s *RegionSet) IDs() []string {
	ids := make([]string, len(s.regions))
	for i, r := range s.regions {
		ids[i] = r.ID()
	}
	return ids
}

// Get returns the region with the given identifier.
func (s *RegionSet) Get(id string) (Region, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.regions[i], true
}

// ContainingIDs returns, in set order, the identifiers of every region that
// contains p. Overlapping regions may all be returned.
func (s *RegionSet) ContainingIDs(p Point) []string {
	ids := make([]string, 0)
	for _, r := range s.regions {
		if r.Contains(p) {
			ids = append(ids, r.ID())
		}
	}
	return ids
}

// Spec is the serializable description of a region, as found in experiment
// configuration files and tool arguments.
//
// Shape selects the variant. When Shape is empty it is inferred: Rect means a
// rectangle, Center or Radius means a circle, anything else a polygon.
type Spec struct {
	// ID is the region identifier reported in occupancy results.
	ID string `json:"id"`

	// Shape is "polygon", "circle" or "rectangle".
	Shape string `json:"shape,omitempty"`

	// Points are the polygon vertices as [x, y] pairs.
	Points [][2]float64 `json:"points,omitempty"`

	// Center is the circle center as [x, y].
	Center *[2]float64 `json:"center,omitempty"`

	// Radius is the circle radius in pixels.
	Radius float64 `json:"radius,omitempty"`

	// Rect is a rectangle as [x1, y1, x2, y2] with x2, y2 exclusive.
	Rect *[4]int `json:"rect,omitempty"`
}

// shape returns the effective shape name.
func (sp Spec) shape() string {
	if sp.Shape != "" {
		return strings.ToLower(sp.Shape)
	}
	switch {
	case sp.Rect != nil:
		return ShapeRectangle
	case sp.Center != nil || sp.Radius != 0:
		return ShapeCircle
	default:
		return ShapePolygon
	}
}

// Build constructs the region described by the spec.
func (sp Spec) Build() (Region, error) {
	switch sp.shape() {
	case ShapePolygon:
		vertices := make([]Point, len(sp.Points))
		for i, v := range sp.Points {
			vertices[i] = Point{X: v[0], Y: v[1]}
		}
		return NewPolygon(sp.ID, vertices)
	case ShapeCircle:
		var center Point
		if sp.Center != nil {
			center = Point{X: sp.Center[0], Y: sp.Center[1]}
		}
		return NewCircle(sp.ID, center, sp.Radius)
	case ShapeRectangle:
		if sp.Rect == nil {
			return nil, &GeometryError{RegionID: sp.ID, Kind: ErrDegenerateRectangle, Detail: "rect missing"}
		}
		return NewRectangle(sp.ID, image.Rect(sp.Rect[0], sp.Rect[1], sp.Rect[2], sp.Rect[3]))
	default:
		return nil, &GeometryError{RegionID: sp.ID, Kind: ErrUnknownShape, Detail: sp.Shape}
	}
}

// BuildRegionSet constructs every spec and collects them into a RegionSet.
//
// Construction does not stop at the first invalid spec: the returned error
// combines the failure of every spec (see multierr.Errors), so a broken
// configuration can be fixed in one pass.
func BuildRegionSet(specs []Spec) (*RegionSet, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no regions defined")
	}

	regions := make([]Region, 0, len(specs))
	var errs error
	for _, sp := range specs {
		r, err := sp.Build()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		regions = append(regions, r)
	}
	if errs != nil {
		return nil, errs
	}
	return NewRegionSet(regions...)
}
