package occupancy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
)

func ptr(p geometry.Point) *geometry.Point { return &p }

func f64(v float64) *float64 { return &v }

// centerEngine builds an engine over a single circle "center" at (100,100)
// with radius 10.
func centerEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := geometry.NewCircle("center", geometry.Pt(100, 100), 10)
	require.NoError(t, err)
	set, err := geometry.NewRegionSet(c)
	require.NoError(t, err)
	return NewEngine(set)
}

func TestNewEngineInitialRecords(t *testing.T) {
	a, _ := geometry.NewCircle("a", geometry.Pt(0, 0), 1)
	b, _ := geometry.NewCircle("b", geometry.Pt(5, 5), 1)
	set, err := geometry.NewRegionSet(a, b)
	require.NoError(t, err)

	e := NewEngine(set)
	want := map[string]Record{"a": {}, "b": {}}
	if diff := cmp.Diff(want, e.Records()); diff != "" {
		t.Errorf("initial records mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateEnterExitReenter(t *testing.T) {
	e := centerEngine(t)

	samples := []struct {
		pos geometry.Point
		t   float64
	}{
		{geometry.Pt(100, 100), 0.0},
		{geometry.Pt(100, 100), 1.0},
		{geometry.Pt(200, 200), 2.0},
		{geometry.Pt(100, 100), 3.0},
	}
	for _, s := range samples {
		e.Update(ptr(s.pos), s.t)
	}

	got, ok := e.Record("center")
	require.True(t, ok)
	want := Record{Inside: true, EnterTime: f64(3.0), TotalTime: 2.0, Entries: 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		pos  geometry.Point
	}{
		{"inside", geometry.Pt(100, 100)},
		{"outside", geometry.Pt(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := centerEngine(t)
			e.Update(ptr(tt.pos), 1.5)
			before := e.Records()

			e.Update(ptr(tt.pos), 1.5)
			if diff := cmp.Diff(before, e.Records()); diff != "" {
				t.Errorf("second update changed state (-before +after):\n%s", diff)
			}
		})
	}
}

func TestUpdateAbsentIsNoop(t *testing.T) {
	e := centerEngine(t)

	// Before any update, mid-visit and after an exit.
	steps := []*geometry.Point{nil, ptr(geometry.Pt(100, 100)), nil, ptr(geometry.Pt(300, 0)), nil}
	for i, pos := range steps {
		before := e.Records()
		e.Update(pos, float64(i))
		if pos == nil {
			if diff := cmp.Diff(before, e.Records()); diff != "" {
				t.Errorf("step %d: absent update changed state (-before +after):\n%s", i, diff)
			}
		}
	}

	rec, _ := e.Record("center")
	assert.Equal(t, 1, rec.Entries)
	assert.Equal(t, 2.0, rec.TotalTime)
}

func TestEntriesOnlyCountTransitions(t *testing.T) {
	e := centerEngine(t)
	in := ptr(geometry.Pt(100, 100))
	out := ptr(geometry.Pt(150, 150))

	seq := []*geometry.Point{in, in, in, out, out, in, in, out, in}
	wantEntries := []int{1, 1, 1, 1, 1, 2, 2, 2, 3}

	prevTotal := 0.0
	for i, pos := range seq {
		e.Update(pos, float64(i))
		rec, _ := e.Record("center")
		assert.Equal(t, wantEntries[i], rec.Entries, "step %d", i)
		assert.GreaterOrEqual(t, rec.TotalTime, prevTotal, "total time never decreases")
		assert.Equal(t, rec.Inside, rec.EnterTime != nil, "enter time set iff inside")
		prevTotal = rec.TotalTime
	}
}

func TestOverlappingRegionsAreIndependent(t *testing.T) {
	left, err := geometry.NewPolygon("left", []geometry.Point{{X: 0, Y: 0}, {X: 60, Y: 0}, {X: 60, Y: 50}, {X: 0, Y: 50}})
	require.NoError(t, err)
	right, err := geometry.NewPolygon("right", []geometry.Point{{X: 40, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 40, Y: 50}})
	require.NoError(t, err)
	hub, err := geometry.NewCircle("hub", geometry.Pt(50, 25), 5)
	require.NoError(t, err)
	set, err := geometry.NewRegionSet(left, right, hub)
	require.NoError(t, err)

	e := NewEngine(set)
	e.Update(ptr(geometry.Pt(50, 25)), 4.0)

	for _, id := range []string{"left", "right", "hub"} {
		rec, ok := e.Record(id)
		require.True(t, ok)
		assert.True(t, rec.Inside, id)
		assert.Equal(t, 1, rec.Entries, id)
		require.NotNil(t, rec.EnterTime)
		assert.Equal(t, 4.0, *rec.EnterTime)
	}

	e.Update(ptr(geometry.Pt(10, 25)), 6.0)
	l, _ := e.Record("left")
	r, _ := e.Record("right")
	h, _ := e.Record("hub")
	assert.True(t, l.Inside)
	assert.False(t, r.Inside)
	assert.False(t, h.Inside)
	assert.Equal(t, 2.0, r.TotalTime)
	assert.Equal(t, 0.0, l.TotalTime)
}

func TestRecordsReturnsCopy(t *testing.T) {
	e := centerEngine(t)
	e.Update(ptr(geometry.Pt(100, 100)), 1.0)

	recs := e.Records()
	rec := recs["center"]
	*rec.EnterTime = 99
	rec.Entries = 42
	recs["center"] = rec

	got, _ := e.Record("center")
	assert.Equal(t, 1.0, *got.EnterTime)
	assert.Equal(t, 1, got.Entries)

	_, ok := e.Record("missing")
	assert.False(t, ok)
}

func TestOnTransition(t *testing.T) {
	e := centerEngine(t)
	var events []Event
	e.OnTransition(func(ev Event) { events = append(events, ev) })

	e.Update(ptr(geometry.Pt(100, 100)), 0.5)
	e.Update(ptr(geometry.Pt(100, 100)), 1.0)
	e.Update(nil, 1.5)
	e.Update(ptr(geometry.Pt(0, 0)), 2.5)

	want := []Event{
		{RegionID: "center", Kind: Enter, Time: 0.5},
		{RegionID: "center", Kind: Exit, Time: 2.5, Duration: 2.0},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	e := centerEngine(t)
	e.Update(ptr(geometry.Pt(100, 100)), 1.0)
	e.Update(ptr(geometry.Pt(0, 0)), 3.0)
	e.Update(ptr(geometry.Pt(100, 100)), 4.0)
	before := e.Records()

	snap := e.Snapshot(6.5)
	s := snap["center"]
	assert.Equal(t, 2.0, s.TotalTime)
	assert.Equal(t, 4.5, s.ElapsedTotal)
	assert.True(t, s.Inside)

	if diff := cmp.Diff(before, e.Records()); diff != "" {
		t.Errorf("Snapshot changed state (-before +after):\n%s", diff)
	}
}
