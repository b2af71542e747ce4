package analysis

import (
	"image"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
	"github.com/ironsheep/maze-zone-mcp/internal/occupancy"
	"github.com/ironsheep/maze-zone-mcp/internal/tracking"
)

// Session tracks one animal through one recording. It is not safe for
// concurrent use.
type Session struct {
	id        string
	regions   *geometry.RegionSet
	localizer *tracking.Localizer
	engine    *occupancy.Engine
	visits    *occupancy.VisitLog
	logger    *zap.SugaredLogger

	frames    int
	misses    int
	fallbacks int
	lastTime  float64

	lastPos  *geometry.Point
	distance float64
}

// StepResult reports the outcome of one frame.
type StepResult struct {
	Frame     int                `json:"frame"`
	Time      float64            `json:"time"`
	Detection tracking.Detection `json:"detection"`

	// Inside lists, in region order, the regions containing the position.
	// Empty on a miss.
	Inside []string `json:"inside"`
}

// NewSession creates a session with a fresh localizer and an engine over
// regions. A nil logger disables logging.
func NewSession(regions *geometry.RegionSet, cfg tracking.Config, logger *zap.SugaredLogger) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	id := uuid.NewString()
	logger = logger.With("session", id)

	s := &Session{
		id:        id,
		regions:   regions,
		localizer: tracking.NewLocalizer(cfg, logger),
		engine:    occupancy.NewEngine(regions),
		visits:    occupancy.NewVisitLog(),
		logger:    logger,
	}
	s.engine.OnTransition(s.visits.Observe)
	s.engine.OnTransition(func(ev occupancy.Event) {
		s.logger.Debugw("zone transition",
			"region", ev.RegionID,
			"kind", ev.Kind,
			"time", ev.Time,
			"duration", ev.Duration)
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Regions returns the tracked regions.
func (s *Session) Regions() *geometry.RegionSet { return s.regions }

// OnTransition registers fn for every zone entry and exit.
func (s *Session) OnTransition(fn func(occupancy.Event)) {
	s.engine.OnTransition(fn)
}

// Step localizes the object in frame and updates occupancy at time t.
//
// Timestamps must not decrease between calls; by convention t is
// frame index / fps.
func (s *Session) Step(frame *image.Gray, t float64) StepResult {
	det := s.localizer.Locate(frame)
	s.engine.Update(det.Position, t)

	res := StepResult{
		Frame:     s.frames,
		Time:      t,
		Detection: det,
		Inside:    []string{},
	}
	s.frames++
	s.lastTime = t

	if !det.Found() {
		s.misses++
		return res
	}
	if det.Fallback {
		s.fallbacks++
	}
	if s.lastPos != nil {
		s.distance += math.Hypot(det.Position.X-s.lastPos.X, det.Position.Y-s.lastPos.Y)
	}
	s.lastPos = det.Position
	res.Inside = s.regions.ContainingIDs(*det.Position)
	return res
}

// Frames returns the number of frames stepped.
func (s *Session) Frames() int { return s.frames }

// Misses returns the number of frames without a position.
func (s *Session) Misses() int { return s.misses }

// Fallbacks returns the number of positions found by pooling small contours.
func (s *Session) Fallbacks() int { return s.fallbacks }

// LastTime returns the timestamp of the latest frame.
func (s *Session) LastTime() float64 { return s.lastTime }

// Distance returns the path length in pixels between successive detected
// positions. Frames without a detection are bridged by a straight line.
func (s *Session) Distance() float64 { return s.distance }

// LastPosition returns the most recent detected position, or nil.
func (s *Session) LastPosition() *geometry.Point { return s.lastPos }

// Records returns a copy of the occupancy records.
func (s *Session) Records() map[string]occupancy.Record {
	return s.engine.Records()
}

// Snapshot returns the records with open visits counted up to the latest
// frame.
func (s *Session) Snapshot() map[string]occupancy.Status {
	return s.engine.Snapshot(s.lastTime)
}

// Visits returns every visit so far; open visits end at the latest frame.
func (s *Session) Visits() []occupancy.Visit {
	return s.visits.Visits(s.lastTime)
}

// Summaries returns visit statistics per region, in region order.
func (s *Session) Summaries() []occupancy.Summary {
	return occupancy.Summarize(s.regions.IDs(), s.Visits())
}
