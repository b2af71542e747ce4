package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ironsheep/maze-zone-mcp/internal/config"
	"github.com/ironsheep/maze-zone-mcp/internal/frames"
	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
	"github.com/ironsheep/maze-zone-mcp/internal/occupancy"
	"github.com/ironsheep/maze-zone-mcp/internal/render"
	"github.com/ironsheep/maze-zone-mcp/internal/tracking"
)

// progressEvery is the number of frames between progress log lines.
const progressEvery = 500

// Options controls optional Run output.
type Options struct {
	// Trace records one TracePoint per frame in the report.
	Trace bool

	// OverlayDir, when set, receives one overlay PNG per frame.
	OverlayDir string

	// Style is used for overlays.
	Style render.Style

	// Logger receives progress and transitions. Nil disables logging.
	Logger *zap.SugaredLogger
}

// TracePoint is the per-frame record of a traced run.
type TracePoint struct {
	Frame    int             `json:"frame"`
	Time     float64         `json:"time"`
	Position *geometry.Point `json:"position"`
	Area     float64         `json:"area"`
	Fallback bool            `json:"fallback"`
	Inside   []string        `json:"inside"`
}

// Report is the outcome of a whole-recording run.
type Report struct {
	SessionID  string                      `json:"session_id"`
	Frames     int                         `json:"frames"`
	Detections int                         `json:"detections"`
	Misses     int                         `json:"misses"`
	Fallbacks  int                         `json:"fallbacks"`
	Duration   float64                     `json:"duration"`
	Distance   float64                     `json:"distance_pixels"`
	Records    map[string]occupancy.Record `json:"records"`
	Status     map[string]occupancy.Status `json:"status"`
	Summaries  []occupancy.Summary         `json:"summaries"`
	Events     []occupancy.Event           `json:"events"`
	Trace      []TracePoint                `json:"trace,omitempty"`
	Overlays   []string                    `json:"overlays,omitempty"`
}

// Run processes every frame of src and reports per-zone occupancy.
//
// Frames are processed strictly in order, one at a time. Run stops early
// when ctx is canceled or a frame cannot be read; the error is returned
// together with the report built so far.
func Run(ctx context.Context, src frames.Source, regions *geometry.RegionSet, cfg tracking.Config, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if opts.OverlayDir != "" {
		if err := os.MkdirAll(opts.OverlayDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	sess := NewSession(regions, cfg, logger)
	report := &Report{
		SessionID: sess.ID(),
		Events:    []occupancy.Event{},
	}
	sess.OnTransition(func(ev occupancy.Event) {
		report.Events = append(report.Events, ev)
	})

	logger.Infow("analysis started",
		"session", sess.ID(),
		"frames", src.Len(),
		"fps", src.FPS(),
		"regions", regions.IDs())

	var runErr error
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = err
			break
		}

		res := sess.Step(frame.Gray, frame.Time)

		if opts.Trace {
			report.Trace = append(report.Trace, TracePoint{
				Frame:    frame.Index,
				Time:     frame.Time,
				Position: res.Detection.Position,
				Area:     res.Detection.Area,
				Fallback: res.Detection.Fallback,
				Inside:   res.Inside,
			})
		}

		if opts.OverlayDir != "" {
			path, err := writeOverlay(opts, frame, sess, res)
			if err != nil {
				runErr = err
				break
			}
			report.Overlays = append(report.Overlays, path)
		}

		if sess.Frames()%progressEvery == 0 {
			logger.Infow("analysis progress",
				"frames", sess.Frames(),
				"misses", sess.Misses(),
				"time", frame.Time)
		}
	}

	report.Frames = sess.Frames()
	report.Misses = sess.Misses()
	report.Detections = sess.Frames() - sess.Misses()
	report.Fallbacks = sess.Fallbacks()
	report.Duration = sess.LastTime()
	report.Distance = sess.Distance()
	report.Records = sess.Records()
	report.Status = sess.Snapshot()
	report.Summaries = sess.Summaries()

	if runErr != nil {
		logger.Warnw("analysis stopped early", "frames", report.Frames, "error", runErr)
		return report, runErr
	}
	logger.Infow("analysis finished",
		"frames", report.Frames,
		"detections", report.Detections,
		"misses", report.Misses)
	return report, nil
}

// writeOverlay draws the frame's overlay and saves it to the overlay
// directory.
func writeOverlay(opts Options, frame frames.Frame, sess *Session, res StepResult) (string, error) {
	inside := make(map[string]bool)
	for id, rec := range sess.Records() {
		inside[id] = rec.Inside
	}

	base := frame.Color
	if base == nil {
		base = frame.Gray
	}
	img := render.Overlay(base, sess.Regions(), inside, res.Detection.Position, opts.Style)

	path := filepath.Join(opts.OverlayDir, fmt.Sprintf("overlay_%06d.png", frame.Index))
	if err := render.Save(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// RunConfig runs the experiment described by cfg over its frame directory.
func RunConfig(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	regions, err := cfg.RegionSet()
	if err != nil {
		return nil, err
	}
	if opts.Style.InsideColor == nil {
		style, err := cfg.Style()
		if err != nil {
			return nil, err
		}
		opts.Style = style
	}

	src, err := frames.NewDirSequence(cfg.Frames.Dir, cfg.Frames.Pattern, cfg.Frames.FPS)
	if err != nil {
		return nil, err
	}
	return Run(ctx, src, regions, cfg.Detector, opts)
}
