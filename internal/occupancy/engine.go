package occupancy

import (
	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
)

// Record is the occupancy state of one region.
type Record struct {
	// Inside reports whether the object is currently in the region.
	Inside bool `json:"inside"`

	// EnterTime is the time of the most recent entry. It is set exactly when
	// Inside is true.
	EnterTime *float64 `json:"enter_time"`

	// TotalTime is the accumulated time, in seconds, of completed visits.
	TotalTime float64 `json:"total_time"`

	// Entries is the number of entries so far.
	Entries int `json:"entries"`
}

// clone returns a deep copy of r.
func (r Record) clone() Record {
	if r.EnterTime != nil {
		t := *r.EnterTime
		r.EnterTime = &t
	}
	return r
}

// TransitionKind distinguishes entries from exits.
type TransitionKind string

const (
	Enter TransitionKind = "enter"
	Exit  TransitionKind = "exit"
)

// Event describes one state transition of one region.
type Event struct {
	RegionID string         `json:"region_id"`
	Kind     TransitionKind `json:"kind"`
	Time     float64        `json:"time"`

	// Duration is the length of the visit that just ended. Zero for entries.
	Duration float64 `json:"duration,omitempty"`
}

// Engine maintains the occupancy records for a RegionSet.
type Engine struct {
	regions   *geometry.RegionSet
	records   map[string]*Record
	listeners []func(Event)
}

// NewEngine creates an Engine with one OUTSIDE record per region.
func NewEngine(regions *geometry.RegionSet) *Engine {
	records := make(map[string]*Record, regions.Len())
	for _, id := range regions.IDs() {
		records[id] = &Record{}
	}
	return &Engine{
		regions: regions,
		records: records,
	}
}

// Regions returns the region set the engine evaluates.
func (e *Engine) Regions() *geometry.RegionSet { return e.regions }

// OnTransition registers fn to be called, synchronously and in region order,
// for every entry and exit produced by Update.
func (e *Engine) OnTransition(fn func(Event)) {
	e.listeners = append(e.listeners, fn)
}

// Update folds one position sample into every record.
//
// Parameters:
//   - pos: Object position, or nil when the object was not detected. A nil
//     position changes nothing.
//   - t: Sample time in seconds. Must not be earlier than the previous
//     sample.
func (e *Engine) Update(pos *geometry.Point, t float64) {
	if pos == nil {
		return
	}

	for _, region := range e.regions.Regions() {
		rec := e.records[region.ID()]
		insideNow := region.Contains(*pos)

		switch {
		case insideNow && !rec.Inside:
			enter := t
			rec.Inside = true
			rec.EnterTime = &enter
			rec.Entries++
			e.emit(Event{RegionID: region.ID(), Kind: Enter, Time: t})

		case !insideNow && rec.Inside:
			d := t - *rec.EnterTime
			rec.TotalTime += d
			rec.Inside = false
			rec.EnterTime = nil
			e.emit(Event{RegionID: region.ID(), Kind: Exit, Time: t, Duration: d})
		}
	}
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.listeners {
		fn(ev)
	}
}

// Record returns a copy of the record for one region.
func (e *Engine) Record(id string) (Record, bool) {
	rec, ok := e.records[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Records returns a copy of every record keyed by region identifier.
// Modifying the result does not affect the engine.
func (e *Engine) Records() map[string]Record {
	out := make(map[string]Record, len(e.records))
	for id, rec := range e.records {
		out[id] = rec.clone()
	}
	return out
}

// Status is a record together with its running dwell time.
type Status struct {
	Record

	// ElapsedTotal is TotalTime plus the open visit up to the snapshot time.
	ElapsedTotal float64 `json:"elapsed_total"`
}

// Snapshot returns every record with the open visit, if any, counted up to
// now. The engine's state is not changed.
func (e *Engine) Snapshot(now float64) map[string]Status {
	out := make(map[string]Status, len(e.records))
	for id, rec := range e.records {
		s := Status{Record: rec.clone(), ElapsedTotal: rec.TotalTime}
		if rec.Inside {
			s.ElapsedTotal += now - *rec.EnterTime
		}
		out[id] = s
	}
	return out
}
