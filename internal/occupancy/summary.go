package occupancy

import (
	"github.com/montanaflynn/stats"
)

// Visit is one stay of the object in a region.
type Visit struct {
	RegionID string  `json:"region_id"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`

	// Open marks a visit still in progress, cut off at End.
	Open bool `json:"open,omitempty"`
}

// Duration returns the length of the visit in seconds.
func (v Visit) Duration() float64 { return v.End - v.Start }

// VisitLog collects individual visits from engine transitions.
//
// Register Observe with Engine.OnTransition before the first Update.
type VisitLog struct {
	open   []Visit // one entry per region currently inside, in entry order
	closed []Visit
}

// NewVisitLog creates an empty log.
func NewVisitLog() *VisitLog {
	return &VisitLog{}
}

// Observe records a transition.
func (l *VisitLog) Observe(ev Event) {
	i := l.openIndex(ev.RegionID)
	switch ev.Kind {
	case Enter:
		if i >= 0 {
			l.open[i].Start = ev.Time
			return
		}
		l.open = append(l.open, Visit{RegionID: ev.RegionID, Start: ev.Time})
	case Exit:
		if i < 0 {
			return
		}
		v := l.open[i]
		l.open = append(l.open[:i], l.open[i+1:]...)
		v.End = ev.Time
		l.closed = append(l.closed, v)
	}
}

func (l *VisitLog) openIndex(id string) int {
	for i, v := range l.open {
		if v.RegionID == id {
			return i
		}
	}
	return -1
}

// Visits returns the completed visits in the order they ended, followed by
// visits still open at now, cut off at now.
func (l *VisitLog) Visits(now float64) []Visit {
	out := make([]Visit, len(l.closed), len(l.closed)+len(l.open))
	copy(out, l.closed)
	for _, v := range l.open {
		v.End = now
		v.Open = true
		out = append(out, v)
	}
	return out
}

// Summary holds descriptive statistics of the visits to one region.
type Summary struct {
	RegionID   string   `json:"region_id"`
	Visits     int      `json:"visits"`
	TotalTime  float64  `json:"total_time"`
	MeanTime   float64  `json:"mean_time"`
	MedianTime float64  `json:"median_time"`
	MinTime    float64  `json:"min_time"`
	MaxTime    float64  `json:"max_time"`
	StdDev     float64  `json:"std_dev"`
	FirstEntry *float64 `json:"first_entry"`
}

// Summarize computes per-region statistics, returned in the order of ids.
// Regions without visits get a zero Summary with a nil FirstEntry.
func Summarize(ids []string, visits []Visit) []Summary {
	durations := make(map[string]stats.Float64Data, len(ids))
	first := make(map[string]float64, len(ids))
	for _, v := range visits {
		durations[v.RegionID] = append(durations[v.RegionID], v.Duration())
		if f, ok := first[v.RegionID]; !ok || v.Start < f {
			first[v.RegionID] = v.Start
		}
	}

	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		s := Summary{RegionID: id}
		data := durations[id]
		if len(data) > 0 {
			// Errors only signal empty input, ruled out above.
			s.Visits = len(data)
			s.TotalTime, _ = stats.Sum(data)
			s.MeanTime, _ = stats.Mean(data)
			s.MedianTime, _ = stats.Median(data)
			s.MinTime, _ = stats.Min(data)
			s.MaxTime, _ = stats.Max(data)
			s.StdDev, _ = stats.StandardDeviation(data)
			f := first[id]
			s.FirstEntry = &f
		}
		out = append(out, s)
	}
	return out
}
