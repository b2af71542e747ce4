package geometry

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// eastArm is the right-hand zone of the elevated plus maze recordings.
var eastArm = []Point{{620, 450}, {903, 450}, {900, 320}, {622, 320}}

func mustPolygon(t *testing.T, id string, vertices []Point) *Polygon {
	t.Helper()
	p, err := NewPolygon(id, vertices)
	require.NoError(t, err)
	return p
}

func mustCircle(t *testing.T, id string, center Point, radius float64) *Circle {
	t.Helper()
	c, err := NewCircle(id, center, radius)
	require.NoError(t, err)
	return c
}

func TestPolygonContainsVertices(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Point
	}{
		{"triangle", []Point{{0, 0}, {10, 0}, {5, 8}}},
		{"east arm", eastArm},
		{"concave", []Point{{0, 0}, {20, 0}, {20, 20}, {10, 5}, {0, 20}}},
		{"fractional", []Point{{0.5, 0.25}, {12.75, 1.5}, {6.1, 9.9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolygon(t, tt.name, tt.vertices)
			for _, v := range tt.vertices {
				assert.True(t, p.Contains(v), "vertex %v should be inside", v)
			}
		})
	}
}

func TestPolygonContains(t *testing.T) {
	square := mustPolygon(t, "square", []Point{{10, 10}, {20, 10}, {20, 20}, {10, 20}})
	concave := mustPolygon(t, "concave", []Point{{0, 0}, {20, 0}, {20, 20}, {10, 5}, {0, 20}})

	tests := []struct {
		name   string
		region *Polygon
		point  Point
		want   bool
	}{
		{"square center", square, Pt(15, 15), true},
		{"square top edge", square, Pt(15, 10), true},
		{"square right edge", square, Pt(20, 13.5), true},
		{"square just outside", square, Pt(20.001, 15), false},
		{"square far away", square, Pt(100, 100), false},
		{"concave body", concave, Pt(10, 2), true},
		{"concave notch", concave, Pt(10, 15), false},
		{"concave left leg", concave, Pt(2, 15), true},
		{"slanted edge midpoint", concave, Pt(15, 12.5), true},
		{"east arm center", mustPolygon(t, "este", eastArm), Pt(760, 385), true},
		{"east arm west of it", mustPolygon(t, "este", eastArm), Pt(600, 385), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.region.Contains(tt.point))
		})
	}
}

func TestNewPolygonTooFewVertices(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		_, err := NewPolygon("bad", make([]Point, n))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooFewVertices)

		var gerr *GeometryError
		require.True(t, errors.As(err, &gerr))
		assert.Equal(t, "bad", gerr.RegionID)
	}
}

func TestNewPolygonCopiesVertices(t *testing.T) {
	verts := []Point{{0, 0}, {10, 0}, {10, 10}}
	p := mustPolygon(t, "tri", verts)
	verts[0] = Pt(50, 50)

	assert.Equal(t, Pt(0, 0), p.Vertices()[0])
	assert.False(t, p.Contains(Pt(50, 50)))
}

func TestNewRectangle(t *testing.T) {
	r, err := NewRectangle("box", image.Rect(10, 20, 30, 25))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(10, 20, 30, 25), r.Bounds())
	assert.True(t, r.Contains(Pt(10, 20)))
	assert.True(t, r.Contains(Pt(29, 24)))
	assert.False(t, r.Contains(Pt(30, 24)))
	assert.False(t, r.Contains(Pt(29, 25)))

	_, err = NewRectangle("flat", image.Rect(0, 0, 10, 0))
	assert.ErrorIs(t, err, ErrDegenerateRectangle)
}

func TestCircleContains(t *testing.T) {
	center := Pt(100, 100)
	const radius = 10.0
	c := mustCircle(t, "centro", center, radius)

	assert.True(t, c.Contains(center), "center")

	for _, deg := range []float64{0, 90, 180, 270} {
		theta := deg * math.Pi / 180
		onRim := Pt(center.X+radius*math.Cos(theta), center.Y+radius*math.Sin(theta))
		// Round the axis-aligned samples so cos(90°) noise does not push them out.
		onRim = Pt(math.Round(onRim.X), math.Round(onRim.Y))
		assert.True(t, c.Contains(onRim), "rim at %v°", deg)

		const eps = 1e-6
		beyond := Pt(center.X+(radius+eps)*math.Cos(theta), center.Y+(radius+eps)*math.Sin(theta))
		assert.False(t, c.Contains(beyond), "beyond rim at %v°", deg)
	}

	// 6-8-10 lies exactly on the rim.
	assert.True(t, c.Contains(Pt(106, 108)))
	assert.False(t, c.Contains(Pt(106, 108.01)))
}

func TestNewCircleNonPositiveRadius(t *testing.T) {
	for _, r := range []float64{0, -1} {
		_, err := NewCircle("bad", Pt(0, 0), r)
		assert.ErrorIs(t, err, ErrNonPositiveRadius, "radius %v", r)
	}
}

func TestNonFiniteGeometry(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Region, error)
	}{
		{"infinite radius", func() (Region, error) { return NewCircle("c", Pt(5, 5), math.Inf(1)) }},
		{"nan radius", func() (Region, error) { return NewCircle("c", Pt(5, 5), math.NaN()) }},
		{"nan center", func() (Region, error) { return NewCircle("c", Pt(math.NaN(), 5), 3) }},
		{"infinite vertex", func() (Region, error) {
			return NewPolygon("p", []Point{{0, 0}, {math.Inf(-1), 0}, {0, 10}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.ErrorIs(t, err, ErrNonFinite)

			var gerr *GeometryError
			assert.ErrorAs(t, err, &gerr)
		})
	}
}

func TestMaskAgreesWithContains(t *testing.T) {
	canvas := image.Rect(0, 0, 64, 48)
	regions := []Region{
		mustPolygon(t, "tri", []Point{{3.5, 2}, {60, 10.25}, {20, 45.75}}),
		mustPolygon(t, "concave", []Point{{0, 0}, {20, 0}, {20, 20}, {10, 5}, {0, 20}}),
		mustCircle(t, "disc", Pt(40.5, 30), 12.3),
		// Partly off-canvas.
		mustCircle(t, "edge", Pt(62, 2), 8),
		// Covers the whole canvas; bounds must not overflow.
		mustCircle(t, "huge", Pt(5, 5), 1e19),
	}

	// Mask is produced by evaluating Contains per pixel, so no boundary
	// tolerance is needed.
	const tolerance = 0

	for _, r := range regions {
		t.Run(r.ID(), func(t *testing.T) {
			mask := r.Mask(canvas)
			require.Equal(t, canvas, mask.Bounds())

			mismatches := 0
			marked := 0
			for y := canvas.Min.Y; y < canvas.Max.Y; y++ {
				for x := canvas.Min.X; x < canvas.Max.X; x++ {
					v := mask.GrayAt(x, y).Y
					assert.Contains(t, []uint8{0, 255}, v)
					if v == 255 {
						marked++
					}
					if (v == 255) != r.Contains(Pt(float64(x), float64(y))) {
						mismatches++
					}
				}
			}
			assert.LessOrEqual(t, mismatches, tolerance)
			assert.Positive(t, marked)
		})
	}
}

func TestDrawStrokesBoundary(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	red := color.RGBA{255, 0, 0, 255}

	box := mustPolygon(t, "box", []Point{{10, 10}, {50, 10}, {50, 50}, {10, 50}})
	box.Draw(dst, red, 2)

	assert.Equal(t, red, dst.RGBAAt(30, 10), "top edge painted")
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(30, 30), "interior untouched")
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(2, 2), "exterior untouched")

	disc := mustCircle(t, "disc", Pt(30, 30), 5)
	disc.Draw(dst, red, -1)
	assert.Equal(t, red, dst.RGBAAt(30, 30), "negative thickness fills")
}

func TestRegionSet(t *testing.T) {
	a := mustCircle(t, "a", Pt(10, 10), 5)
	b := mustCircle(t, "b", Pt(14, 10), 5)
	c := mustPolygon(t, "c", []Point{{100, 100}, {110, 100}, {105, 110}})

	set, err := NewRegionSet(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"a", "b", "c"}, set.IDs())
	assert.Equal(t, []string{"a", "b"}, set.ContainingIDs(Pt(12, 10)))
	assert.Empty(t, set.ContainingIDs(Pt(50, 50)))

	got, ok := set.Get("c")
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = set.Get("missing")
	assert.False(t, ok)

	regions := set.Regions()
	regions[0] = c
	assert.Equal(t, "a", set.Regions()[0].ID(), "Regions returns a copy")
}

func TestNewRegionSetRejectsBadIDs(t *testing.T) {
	a := mustCircle(t, "a", Pt(10, 10), 5)
	dup := mustCircle(t, "a", Pt(20, 20), 5)
	anon := mustCircle(t, "", Pt(20, 20), 5)

	_, err := NewRegionSet(a, dup, anon)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.ErrorIs(t, err, ErrEmptyID)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestSpecBuild(t *testing.T) {
	center := [2]float64{145, 117}
	rect := [4]int{0, 0, 10, 10}

	tests := []struct {
		name    string
		spec    Spec
		want    string
		wantErr error
	}{
		{"explicit polygon", Spec{ID: "oeste", Shape: "polygon", Points: [][2]float64{{272, 450}, {274, 320}, {566, 320}, {562, 450}}}, "*geometry.Polygon", nil},
		{"inferred circle", Spec{ID: "centro", Center: &center, Radius: 25}, "*geometry.Circle", nil},
		{"inferred rectangle", Spec{ID: "box", Rect: &rect}, "*geometry.Polygon", nil},
		{"upper-case shape", Spec{ID: "c", Shape: "CIRCLE", Center: &center, Radius: 3}, "*geometry.Circle", nil},
		{"unknown shape", Spec{ID: "x", Shape: "hexagon"}, "", ErrUnknownShape},
		{"rectangle without rect", Spec{ID: "x", Shape: "rectangle"}, "", ErrDegenerateRectangle},
		{"circle without radius", Spec{ID: "x", Shape: "circle", Center: &center}, "", ErrNonPositiveRadius},
		{"polygon without points", Spec{ID: "x"}, "", ErrTooFewVertices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.spec.Build()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.spec.ID, r.ID())
			assert.Equal(t, tt.want, typeName(r))
		})
	}
}

func TestBuildRegionSetReportsEveryError(t *testing.T) {
	specs := []Spec{
		{ID: "ok", Shape: "circle", Center: &[2]float64{1, 1}, Radius: 1},
		{ID: "flat", Shape: "polygon", Points: [][2]float64{{0, 0}, {1, 1}}},
		{ID: "dot", Shape: "circle", Radius: -2},
	}

	_, err := BuildRegionSet(specs)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, ErrTooFewVertices)
	assert.ErrorIs(t, err, ErrNonPositiveRadius)

	_, err = BuildRegionSet(nil)
	assert.Error(t, err)
}

func typeName(r Region) string {
	switch r.(type) {
	case *Polygon:
		return "*geometry.Polygon"
	case *Circle:
		return "*geometry.Circle"
	default:
		return "unknown"
	}
}
